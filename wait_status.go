package idkit

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
)

var ErrPollerRunning = errors.New("session status is already being polled")

// Status starts polling the bridge and returns the resulting stream of statuses.
// The first status, StatusWaitingForConnection, is sent immediately; afterwards a
// status is only sent when the state of the session changes. The channel is closed
// after a finished status, or when ctx is done; cancelling ctx also aborts any
// request in flight.
//
// A session has at most one stream at a time: while one is running, Status returns
// ErrPollerRunning.
func (s *Session) Status(ctx context.Context) (<-chan Status, error) {
	if !s.polling.CompareAndSwap(false, true) {
		return nil, ErrPollerRunning
	}
	statuschan := make(chan Status)
	go func() {
		defer close(statuschan)
		defer s.polling.Store(false)
		s.poll(ctx, statuschan)
	}()
	return statuschan, nil
}

// Wait polls the bridge until the session finishes and returns its proof.
// If the session fails, the error is an AppError, or a *SessionError when it was raised locally.
func (s *Session) Wait(ctx context.Context) (*Proof, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	statuschan, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	for status := range statuschan {
		switch status.Kind {
		case StatusConfirmed:
			return status.Proof, nil
		case StatusFailed:
			if serr, ok := status.Err.(*SessionError); ok {
				return nil, serr
			}
			if status.Err != nil {
				return nil, &SessionError{AppError: *status.Error, Err: status.Err}
			}
			return nil, *status.Error
		}
	}
	return nil, ctx.Err()
}

func (s *Session) poll(ctx context.Context, statuschan chan<- Status) {
	last := Status{Kind: StatusWaitingForConnection}
	if !send(ctx, statuschan, last) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.pollInterval):
		}

		status := s.pollOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		if status.SameKind(last) {
			continue
		}
		if !send(ctx, statuschan, status) || status.Finished() {
			return
		}
		last = status
	}
}

func (s *Session) pollOnce(ctx context.Context) Status {
	res, err := s.bridge.PollRequest(ctx, s.requestID)
	if err != nil {
		if ctx.Err() != nil {
			return Status{} // cancelled, discarded by the caller
		}
		return s.fail(ErrorGenericError, err)
	}

	switch res.Status {
	case BridgeStatusInitialized:
		return Status{Kind: StatusWaitingForConnection}
	case BridgeStatusRetrieved:
		return Status{Kind: StatusAwaitingConfirmation}
	case BridgeStatusCompleted:
		if res.Response == nil {
			return s.fail(ErrorUnexpectedResponse, errors.New("request completed without response"))
		}
		plaintext, err := DecryptPayload(s.key, res.Response)
		if err != nil {
			return s.fail(ErrorGenericError, err)
		}
		result, err := DecodeResponseJSON(plaintext)
		if err != nil {
			return s.fail(ErrorGenericError, err)
		}
		switch r := result.(type) {
		case *Proof:
			Logger.WithField("request", s.requestID).Debug("proof received")
			return confirmed(r)
		case *AppError:
			Logger.WithFields(logrus.Fields{"request": s.requestID, "code": r.Code}).Debug("World App reported failure")
			return failed(*r, nil)
		}
	}
	return s.fail(ErrorUnexpectedResponse, errors.Errorf("unexpected bridge status %q", res.Status))
}

func (s *Session) fail(appErr AppError, err error) Status {
	Logger.WithFields(logrus.Fields{"request": s.requestID, "code": appErr.Code}).WithError(err).Warn("session failed")
	return failed(appErr, err)
}

func send(ctx context.Context, statuschan chan<- Status, status Status) bool {
	select {
	case statuschan <- status:
		return true
	case <-ctx.Done():
		return false
	}
}
