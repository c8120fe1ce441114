package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/paulstuart/trinover/pkg/model"
	"github.com/paulstuart/trinover/pkg/view"
)

// ErrorPrefix starts every failure message shown to the user.
const ErrorPrefix = "Error comparing versions: "

// Comparer fetches a comparison result. *Requester satisfies it.
type Comparer interface {
	Compare(ctx context.Context, from, to string) (model.ComparisonResult, error)
}

// Display receives what the controller decides to show.
type Display interface {
	// Clear empties the results region when a submission starts.
	Clear()
	// ShowResults replaces the results region and brings target into view.
	ShowResults(p view.Page, target view.ScrollTarget)
	// Alert shows a blocking message.
	Alert(msg string)
}

// Controller applies the response of the most recent submission only.
// Older responses that arrive late are discarded. Calls into the Display are
// serialized by mu, so a submission's Clear never interleaves with an earlier
// submission still applying its result.
type Controller struct {
	comparer Comparer
	display  Display
	opts     view.Options
	log      *zap.Logger

	generation atomic.Uint64
	mu         sync.Mutex
	current    view.Page
}

// NewController returns a controller that renders into d.
func NewController(c Comparer, d Display, opts view.Options, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{comparer: c, display: d, opts: opts, log: log}
}

// Submit runs one comparison. It returns ErrStale when a later Submit was
// issued before this one finished; the display is left untouched in that case.
func (c *Controller) Submit(ctx context.Context, from, to string) (view.Page, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		err := &ValidationError{Message: missingVersionMessage}
		c.display.Alert(err.Message)
		return view.Page{}, err
	}

	var verr *ValidationError
	c.mu.Lock()
	token := c.generation.Add(1)
	c.display.Clear()
	c.mu.Unlock()

	result, err := c.comparer.Compare(ctx, from, to)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation.Load() != token {
		c.log.Debug("discarding superseded comparison", zap.Uint64("token", token))
		return view.Page{}, ErrStale
	}

	switch {
	case errors.As(err, &verr):
		c.display.Alert(verr.Message)
		return view.Page{}, err
	case err != nil:
		c.display.Alert(ErrorPrefix + err.Error())
		return view.Page{}, err
	}

	p := view.Build(result, c.opts)
	c.current = p
	c.display.ShowResults(p, view.ScrollTarget{
		Anchor:   view.ResultsAnchor,
		Offset:   view.ScrollOffset,
		Duration: view.RevealDuration,
	})
	return p, nil
}

// Current returns the last applied page.
func (c *Controller) Current() view.Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
