package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/confirm"
	"github.com/alecgard/enclave/internal/deptuser"
	"github.com/alecgard/enclave/internal/membership"
)

// formFlags binds string flags for a create/update form. Only flags given
// on the command line are copied, so an update keeps the other fields.
type formFlags struct {
	cmd    *cobra.Command
	values map[string]*string
}

func newFormFlags(cmd *cobra.Command) *formFlags {
	return &formFlags{cmd: cmd, values: map[string]*string{}}
}

func (f *formFlags) String(name, usage string) {
	f.values[name] = f.cmd.Flags().String(name, "", usage)
}

func (f *formFlags) apply(name string, dst *string) {
	if f.cmd.Flags().Changed(name) {
		*dst = *f.values[name]
	}
}

func argID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", s)
	}
	return id, nil
}

// finish reports the outcome of a write. Declined confirmations and
// unchanged forms are not errors.
func finish(err error, success string, args ...any) error {
	switch {
	case errors.Is(err, confirm.ErrDeclined):
		fmt.Println("Cancelled.")
		return nil
	case errors.Is(err, membership.ErrNoChanges), errors.Is(err, deptuser.ErrNoChanges):
		fmt.Println("No changes to save.")
		return nil
	case err != nil:
		return err
	}
	fmt.Printf(success+"\n", args...)
	return nil
}
