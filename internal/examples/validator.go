package examples

import (
	"context"
	"errors"
	"strings"

	"github.com/pkgchew/pkgchew/internal/extract"
	"github.com/pkgchew/pkgchew/internal/model"
)

// Runner executes one example fragment in isolation and returns its
// captured stdout. Implementations must enforce their own resource
// boundaries; the pipeline only supplies a context.
type Runner interface {
	Run(ctx context.Context, code string) (string, error)
}

// ErrTimeout marks an execution cut off by the sandbox deadline.
var ErrTimeout = errors.New("timeout")

// Validator checks harvested examples: always for syntactic validity,
// optionally by executing them through a sandbox Runner. Failures are
// recorded on the example and never abort anything.
type Validator struct {
	runner Runner
}

// NewValidator creates a validator. A nil runner disables execution;
// fragments are then only parse-checked.
func NewValidator(runner Runner) *Validator {
	return &Validator{runner: runner}
}

// Validate updates the example's status in place. The raw text is
// never modified, whatever the outcome.
func (v *Validator) Validate(ctx context.Context, example *model.Example) {
	if strings.TrimSpace(example.Code) == "" {
		example.Status = model.ExampleSyntaxInvalid
		example.Cause = "empty fragment"
		return
	}

	if extract.HasSyntaxError([]byte(example.Code)) {
		example.Status = model.ExampleSyntaxInvalid
		example.Cause = "fragment does not parse"
		return
	}

	example.Status = model.ExampleValid

	if v.runner == nil {
		return
	}

	output, err := v.runner.Run(ctx, example.Code)
	if errors.Is(err, context.Canceled) {
		// A cancelled run says nothing about the example itself.
		example.Status = model.ExampleUnvalidated
		return
	}
	if err != nil {
		example.Status = model.ExampleExecutionFailed
		if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			example.Cause = "timeout"
		} else {
			example.Cause = err.Error()
		}
		return
	}
	example.Output = output
}

// ValidateEntity validates every example owned by the entity and its
// descendants, in source order.
func (v *Validator) ValidateEntity(ctx context.Context, entity *model.Entity) []model.Diagnostic {
	var diags []model.Diagnostic
	for _, example := range entity.Examples {
		v.Validate(ctx, example)
		switch example.Status {
		case model.ExampleSyntaxInvalid, model.ExampleExecutionFailed:
			diags = append(diags, model.Warningf("", "example in %s is %s: %s",
				entity.QualifiedName, example.Status, example.Cause))
		}
	}
	for _, child := range entity.Children {
		diags = append(diags, v.ValidateEntity(ctx, child)...)
	}
	return diags
}
