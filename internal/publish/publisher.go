// Package publish delivers a finished message either to standard output or to X/Twitter.
package publish

import (
	"context"
	"fmt"
	"io"
)

// Result describes a successful publish.
type Result struct {
	Posted bool   `json:"posted"`           // false when the text was only printed
	PostID string `json:"postId,omitempty"` // empty when not posted
	URL    string `json:"url,omitempty"`
}

// Publisher delivers a formatted message.
type Publisher interface {
	Publish(ctx context.Context, text string) (Result, error)
}

// StdoutPublisher prints the message instead of posting it. It never touches the network.
type StdoutPublisher struct {
	out io.Writer
}

func NewStdoutPublisher(out io.Writer) *StdoutPublisher {
	return &StdoutPublisher{out: out}
}

func (p *StdoutPublisher) Publish(_ context.Context, text string) (Result, error) {
	if _, err := fmt.Fprintf(p.out, "[DRY-RUN] not posted. text:\n%s\n", text); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
