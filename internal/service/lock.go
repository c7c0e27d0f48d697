package service

import (
	"context"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/schedule"
)

// LockStatus evaluates the stored lock now.
func (p *Planner) LockStatus(ctx context.Context) (schedule.LockStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.refresh(ctx); err != nil {
		return schedule.LockStatus{}, err
	}
	return schedule.Status(p.st.lock, p.now()), nil
}

// Lock freezes ordering for today (LockDay) or for the given weekdays
// (LockWeek). A lock that has not expired, active or dormant, has to be
// removed first.
func (p *Planner) Lock(ctx context.Context, kind models.LockKind, weekdays []int) (_ schedule.LockStatus, err error) {
	const op = "lock"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return schedule.LockStatus{}, err
	}
	now := p.now()
	if schedule.Status(p.st.lock, now).State != schedule.Unlocked {
		return schedule.LockStatus{}, schedule.Invalidf("ordering is already locked; unlock first")
	}

	var lock *models.OrderLock
	switch kind {
	case models.LockDay:
		lock = schedule.NewDayLock(p.userID, now)
	case models.LockWeek:
		lock, err = schedule.NewWeekLock(p.userID, now, weekdays)
		if err != nil {
			return schedule.LockStatus{}, err
		}
	default:
		return schedule.LockStatus{}, schedule.Invalidf("unknown lock kind %q", kind)
	}

	next := p.st
	next.lock = lock
	if err := p.commit(op, next, func() error {
		return p.store.Locks.Save(ctx, lock)
	}); err != nil {
		return schedule.LockStatus{}, err
	}

	p.log.WithField("kind", kind).WithField("expires_at", lock.ExpiresAt).Info("Ordering locked")
	return schedule.Status(lock, now), nil
}

// Unlock removes the lock. Unlocking with no lock is a no-op.
func (p *Planner) Unlock(ctx context.Context) (err error) {
	const op = "unlock"
	defer func() { p.metrics.Observe(op, err) }()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(ctx); err != nil {
		return err
	}
	if p.st.lock == nil {
		return nil
	}

	next := p.st
	next.lock = nil
	if err := p.commit(op, next, func() error {
		return p.store.Locks.Delete(ctx, p.userID)
	}); err != nil {
		return err
	}
	p.log.Info("Ordering unlocked")
	return nil
}
