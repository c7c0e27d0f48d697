package main

import (
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/handlers"
	"github.com/Kerhoff/dayplan/internal/service"
	"github.com/Kerhoff/dayplan/internal/telegram"
)

func registerCommands(bot *telegram.Bot, svc *service.Service, l *logrus.Logger) {
	bot.RegisterCommand("start", handlers.NewStartHandler(svc, l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))

	// Today
	bot.RegisterCommand("today", handlers.NewTodayHandler(svc, l))
	bot.RegisterCommand("done", handlers.NewDoneHandler(svc, l))
	bot.RegisterCommand("skip", handlers.NewSkipHandler(svc, l))
	bot.RegisterCommand("restore", handlers.NewRestoreHandler(svc, l))

	// Items
	bot.RegisterCommand("add", handlers.NewAddHandler(svc, l))
	bot.RegisterCommand("delete", handlers.NewDeleteHandler(svc, l))

	// Ordering
	bot.RegisterCommand("order", handlers.NewOrderHandler(svc, l))
	bot.RegisterCommand("mode", handlers.NewModeHandler(svc, l))
	bot.RegisterCommand("lock", handlers.NewLockHandler(svc, l))
	bot.RegisterCommand("unlock", handlers.NewUnlockHandler(svc, l))

	// Templates
	bot.RegisterCommand("templates", handlers.NewTemplatesHandler(svc, l))
	bot.RegisterCommand("savetemplate", handlers.NewSaveTemplateHandler(svc, l))
	bot.RegisterCommand("apply", handlers.NewApplyHandler(svc, l))
	bot.RegisterCommand("default", handlers.NewDefaultHandler(svc, l))

	// Programs
	bot.RegisterCommand("programs", handlers.NewProgramsHandler(svc, l))
	bot.RegisterCommand("weeks", handlers.NewWeeksHandler(svc, l))
}
