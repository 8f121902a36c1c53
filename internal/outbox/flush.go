package outbox

import (
	"errors"
	"fmt"
	"log"

	"github.com/tinytelemetry/mockview/internal/model"
)

// Submitter delivers a submission to the service.
type Submitter interface {
	Submit(sub model.Submission) (model.SubmitResult, error)
}

// rejected reports errors the service will return on every retry.
func rejected(err error) bool {
	return errors.Is(err, model.ErrInterviewComplete) ||
		errors.Is(err, model.ErrForbidden) ||
		errors.Is(err, model.ErrNotFound)
}

// Send appends sub, delivers it and commits it on acknowledgement. A
// delivery failure leaves the entry pending for Flush.
func (o *Outbox) Send(s Submitter, sub model.Submission) (model.SubmitResult, error) {
	seq, err := o.Append(sub)
	if err != nil {
		return model.SubmitResult{}, err
	}
	res, err := s.Submit(sub)
	if err != nil {
		if rejected(err) {
			if cerr := o.Commit(seq); cerr != nil {
				log.Printf("outbox: commit %d: %v", seq, cerr)
			}
		}
		return model.SubmitResult{}, err
	}
	if err := o.Commit(seq); err != nil {
		log.Printf("outbox: commit %d: %v", seq, err)
	}
	return res, nil
}

// Flush redelivers pending submissions in order. Submissions the service
// rejects for good are dropped with a log line; any other failure stops the
// flush and leaves the rest pending. It returns how many were delivered.
func (o *Outbox) Flush(s Submitter) (int, error) {
	delivered := 0
	err := o.Pending(func(seq uint64, sub model.Submission) error {
		_, err := s.Submit(sub)
		switch {
		case err == nil:
			delivered++
		case rejected(err):
			log.Printf("outbox: dropping submission %s: %v", sub.ID, err)
		default:
			return fmt.Errorf("outbox: redeliver %s: %w", sub.ID, err)
		}
		return o.Commit(seq)
	})
	return delivered, err
}
