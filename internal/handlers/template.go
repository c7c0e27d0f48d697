package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/service"
	"github.com/Kerhoff/dayplan/internal/telegram"
)

// ---------------------------------------------------------------------------
// TemplatesHandler – /templates
// ---------------------------------------------------------------------------

// TemplatesHandler handles the /templates command.
type TemplatesHandler struct {
	base
}

// NewTemplatesHandler creates a new TemplatesHandler.
func NewTemplatesHandler(svc *service.Service, logger *logrus.Logger) *TemplatesHandler {
	return &TemplatesHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /templates command.
func (h *TemplatesHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}
	templates, err := p.Templates(ctx)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}

	if len(templates) == 0 {
		return send(bot, message.Chat.ID, "📋 *No templates yet!*\n\nSave your timeline with `/savetemplate <name>`")
	}

	var sb strings.Builder
	sb.WriteString("📋 *Templates*\n\n")
	for i, t := range templates {
		star := ""
		if t.IsDefault {
			star = " ⭐"
		}
		sb.WriteString(fmt.Sprintf("%d. %s%s _(%d items)_\n", i+1, t.Name, star, len(t.Entries)))
	}
	sb.WriteString("\n_Apply with /apply <n>_")

	return send(bot, message.Chat.ID, sb.String())
}

// ---------------------------------------------------------------------------
// SaveTemplateHandler – /savetemplate <name> [default]
// ---------------------------------------------------------------------------

// SaveTemplateHandler handles the /savetemplate command.
type SaveTemplateHandler struct {
	base
}

// NewSaveTemplateHandler creates a new SaveTemplateHandler.
func NewSaveTemplateHandler(svc *service.Service, logger *logrus.Logger) *SaveTemplateHandler {
	return &SaveTemplateHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /savetemplate command. A trailing "default" marks
// the new template as the default.
func (h *SaveTemplateHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	isDefault := false
	if n := len(args); n > 1 && strings.EqualFold(args[n-1], "default") {
		isDefault = true
		args = args[:n-1]
	}

	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}
	tmpl, err := p.Capture(ctx, strings.Join(args, " "), isDefault)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}

	text := fmt.Sprintf("💾 Saved template *%s* with %d items.", tmpl.Name, len(tmpl.Entries))
	if tmpl.IsDefault {
		text += " It is now the default."
	}
	if err := send(bot, message.Chat.ID, text); err != nil {
		return err
	}

	h.log(message).WithField("template_id", tmpl.ID).Info("Template saved")
	return nil
}

// ---------------------------------------------------------------------------
// ApplyHandler – /apply [n]
// ---------------------------------------------------------------------------

// ApplyHandler handles the /apply command. Without a number the default
// template is applied.
type ApplyHandler struct {
	base
}

// NewApplyHandler creates a new ApplyHandler.
func NewApplyHandler(svc *service.Service, logger *logrus.Logger) *ApplyHandler {
	return &ApplyHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /apply command.
func (h *ApplyHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if err := p.ApplyDefault(ctx); err != nil {
			return explain(bot, message.Chat.ID, err)
		}
		return send(bot, message.Chat.ID, "✅ Default template applied. See /today")
	}

	templates, err := p.Templates(ctx)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	i, ok := position(args[0], len(templates))
	if !ok {
		return send(bot, message.Chat.ID, "❌ No such template. Check /templates for numbers.")
	}
	if err := p.Apply(ctx, templates[i].ID); err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	if err := send(bot, message.Chat.ID, fmt.Sprintf("✅ Template *%s* applied. See /today", templates[i].Name)); err != nil {
		return err
	}

	h.log(message).WithField("template_id", templates[i].ID).Info("Template applied")
	return nil
}

// ---------------------------------------------------------------------------
// DefaultHandler – /default <n|none>
// ---------------------------------------------------------------------------

// DefaultHandler handles the /default command.
type DefaultHandler struct {
	base
}

// NewDefaultHandler creates a new DefaultHandler.
func NewDefaultHandler(svc *service.Service, logger *logrus.Logger) *DefaultHandler {
	return &DefaultHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /default command.
func (h *DefaultHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return send(bot, message.Chat.ID, "❌ Usage: `/default 2` or `/default none`")
	}

	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}

	if strings.EqualFold(args[0], "none") {
		if err := p.SetDefault(ctx, ""); err != nil {
			return explain(bot, message.Chat.ID, err)
		}
		return send(bot, message.Chat.ID, "⭐ No default template.")
	}

	templates, err := p.Templates(ctx)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	i, ok := position(args[0], len(templates))
	if !ok {
		return send(bot, message.Chat.ID, "❌ No such template. Check /templates for numbers.")
	}
	if err := p.SetDefault(ctx, templates[i].ID); err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	return send(bot, message.Chat.ID, fmt.Sprintf("⭐ *%s* is now the default template.", templates[i].Name))
}
