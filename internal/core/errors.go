package core

import (
	"errors"
	"fmt"

	"github.com/edvin/flowgate/internal/model"
)

// ErrTemplateMissing means no catalog entry carries the full tag triple
// for a key. Terminal: the catalog needs operator attention, retrying
// cannot help.
var ErrTemplateMissing = errors.New("no template workflow for key")

// ProvisionError wraps a failed provisioning step with the step name and
// key so operators can see exactly where a sequence broke.
type ProvisionError struct {
	Step string
	Key  model.TriggerKey
	Err  error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s: %s: %v", e.Key, e.Step, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}
