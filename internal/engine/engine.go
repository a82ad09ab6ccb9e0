// Package engine wires the matching, response, assignment and routing
// components into detached per-donation pipelines.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/assignment"
	"github.com/Vievek/zero-hunger-sub000/internal/matching"
	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"github.com/Vievek/zero-hunger-sub000/internal/routing"
	"github.com/Vievek/zero-hunger-sub000/internal/store"
	"go.uber.org/zap"
)

// pipelineTimeout bounds one donation's matching or assignment pipeline,
// including its in-process retry waits.
const pipelineTimeout = 90 * time.Minute

// Engine runs the donation lifecycle. Each donation's pipeline executes
// independently in its own goroutine; steps within one pipeline are
// sequential.
type Engine struct {
	store      store.Store
	selector   *matching.Selector
	resolver   *matching.Resolver
	controller *assignment.Controller
	optimizer  *routing.Optimizer
	logger     *zap.Logger

	wg sync.WaitGroup
}

// New wires an engine from its components.
func New(st store.Store, selector *matching.Selector, resolver *matching.Resolver, controller *assignment.Controller, optimizer *routing.Optimizer, logger *zap.Logger) *Engine {
	return &Engine{
		store:      st,
		selector:   selector,
		resolver:   resolver,
		controller: controller,
		optimizer:  optimizer,
		logger:     logger,
	}
}

// HandleDonationCreated launches the matching pipeline for a new donation
// and returns immediately.
func (e *Engine) HandleDonationCreated(donationID string) {
	e.spawn(func(ctx context.Context) {
		e.activate(ctx, donationID)
		if err := e.selector.Match(ctx, donationID); err != nil {
			e.logger.Error("matching pipeline failed",
				zap.String("donation_id", donationID),
				zap.Error(err),
			)
		}
	})
}

// Accept applies a recipient's acceptance and, on success, launches the
// assignment pipeline in the background.
func (e *Engine) Accept(ctx context.Context, donationID, recipientID string) error {
	if err := e.resolver.Accept(ctx, donationID, recipientID); err != nil {
		return err
	}

	e.spawn(func(ctx context.Context) {
		e.runAssignment(ctx, donationID)
	})

	return nil
}

// Decline applies a recipient's decline.
func (e *Engine) Decline(ctx context.Context, donationID, recipientID, reason string) error {
	return e.resolver.Decline(ctx, donationID, recipientID, reason)
}

// Wait blocks until every in-flight pipeline finishes.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) spawn(run func(ctx context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
		defer cancel()
		run(ctx)
	}()
}

// activate moves a fresh donation to active so it can be matched. A donation
// already active (or further along) is left untouched.
func (e *Engine) activate(ctx context.Context, donationID string) {
	for _, from := range []model.DonationStatus{model.DonationProcessing, model.DonationPending} {
		err := e.store.UpdateDonationStatus(ctx, donationID, from, model.DonationActive)
		if err == nil {
			return
		}
		if !errors.Is(err, store.ErrConflict) {
			e.logger.Warn("activating donation failed",
				zap.String("donation_id", donationID), zap.Error(err))
			return
		}
	}
}

// runAssignment creates the pickup task for an accepted donation, drives the
// escalation controller, and refreshes the bound volunteer's route.
func (e *Engine) runAssignment(ctx context.Context, donationID string) {
	d, err := e.store.GetDonation(ctx, donationID)
	if err != nil {
		e.logger.Error("loading accepted donation failed",
			zap.String("donation_id", donationID), zap.Error(err))
		return
	}

	if d.AcceptedBy == "" {
		e.logger.Warn("assignment requested for unaccepted donation",
			zap.String("donation_id", donationID))
		return
	}

	task := &model.Task{
		ID:         model.NewID(),
		DonationID: d.ID,
		Status:     model.TaskPending,
		Pickup:     d.Location,
		Urgency:    d.Urgency,
	}

	if recipient, err := e.store.GetRecipient(ctx, d.AcceptedBy); err == nil {
		task.Dropoff = recipient.Location
	} else {
		e.logger.Warn("loading accepting recipient failed, task has no dropoff",
			zap.String("recipient_id", d.AcceptedBy), zap.Error(err))
	}

	if err := e.store.CreateTask(ctx, task); err != nil {
		e.logger.Error("creating task failed",
			zap.String("donation_id", donationID), zap.Error(err))
		return
	}

	state := e.controller.Assign(ctx, task.ID)
	e.logger.Info("assignment pipeline finished",
		zap.String("task_id", task.ID),
		zap.String("state", string(state)),
	)

	if state == assignment.StateAssigned {
		e.refreshRoute(ctx, task.ID)
	}
}

// refreshRoute reorders the bound volunteer's pending stops and attaches the
// result to the task. Route data is derived; failures only log.
func (e *Engine) refreshRoute(ctx context.Context, taskID string) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil || task.VolunteerID == "" {
		return
	}

	waypoints, err := e.store.PendingWaypoints(ctx, task.VolunteerID)
	if err != nil {
		e.logger.Warn("loading pending waypoints failed",
			zap.String("volunteer_id", task.VolunteerID), zap.Error(err))
		return
	}

	route := e.optimizer.Optimize(ctx, waypoints)
	if err := e.store.UpdateTaskRoute(ctx, taskID, &route); err != nil {
		e.logger.Warn("saving optimized route failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}
