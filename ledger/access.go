// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import "time"

// TransferAdministrator hands the administrator role to newAdmin.
// Administrator-only; the target must be non-empty.
func (c *Core) TransferAdministrator(actor, newAdmin Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "transfer_administrator"
	if err := c.requireAdministrator(op, actor); err != nil {
		return err
	}
	if newAdmin == "" {
		return failf(CodeValidation, op, "new administrator must not be empty")
	}

	previous := c.administrator
	c.administrator = newAdmin
	c.publish(AdministratorChanged{Previous: previous, New: newAdmin})
	return nil
}

// AddSubmitter authorizes an actor to submit documents and run
// searches. Administrator-only. Adding an existing submitter is a
// no-op that still emits the notification.
func (c *Core) AddSubmitter(actor, target Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "add_submitter"
	if err := c.requireAdministrator(op, actor); err != nil {
		return err
	}
	if target == "" {
		return failf(CodeValidation, op, "submitter must not be empty")
	}

	c.submitters[target] = struct{}{}
	c.publish(SubmitterAdded{Actor: target})
	return nil
}

// RemoveSubmitter revokes an actor's submitter role.
// Administrator-only.
func (c *Core) RemoveSubmitter(actor, target Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "remove_submitter"
	if err := c.requireAdministrator(op, actor); err != nil {
		return err
	}

	delete(c.submitters, target)
	c.publish(SubmitterRemoved{Actor: target})
	return nil
}

// Pause sets the global halt flag. Administrator-only; fails if
// already paused.
func (c *Core) Pause(actor Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "pause"
	if err := c.requireAdministrator(op, actor); err != nil {
		return err
	}
	if c.paused {
		return failf(CodeLifecycle, op, "already paused")
	}

	c.paused = true
	c.publish(Paused{By: actor})
	return nil
}

// Unpause clears the global halt flag. Administrator-only; fails if
// not paused.
func (c *Core) Unpause(actor Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "unpause"
	if err := c.requireAdministrator(op, actor); err != nil {
		return err
	}
	if !c.paused {
		return failf(CodeLifecycle, op, "not paused")
	}

	c.paused = false
	c.publish(Unpaused{By: actor})
	return nil
}

// SetCooldown reconfigures the cooldown interval, in seconds.
// Administrator-only; zero is rejected.
func (c *Core) SetCooldown(actor Actor, seconds uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "set_cooldown"
	if err := c.requireAdministrator(op, actor); err != nil {
		return err
	}
	if seconds == 0 {
		return failf(CodeValidation, op, "cooldown must be positive")
	}

	previous := uint64(c.cooldown / time.Second)
	c.cooldown = time.Duration(seconds) * time.Second
	c.publish(CooldownChanged{Previous: previous, New: seconds})
	return nil
}
