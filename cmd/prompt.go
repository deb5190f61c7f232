// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/eth2util/keystore"
	"github.com/obolnetwork/wagyu/wizard"
)

const (
	// backInput is the input retreating to the previous step.
	backInput = "<"
	// clearInput is the input clearing the current value of a field.
	clearInput = "-"
)

var fieldLabels = map[wizard.Field]string{
	wizard.FieldMnemonic:          "Secret Recovery Phrase",
	wizard.FieldVerifyMnemonic:    "Re-enter your Secret Recovery Phrase",
	wizard.FieldNumKeys:           "Number of new keys",
	wizard.FieldIndex:             "Start index",
	wizard.FieldWithdrawalAddress: "Withdrawal address (optional)",
	wizard.FieldPassword:          "Keystore password",
	wizard.FieldVerifyPassword:    "Re-enter keystore password",
	wizard.FieldFolder:            "Output folder",
	wizard.FieldIndices:           "Validator indices (comma separated)",
	wizard.FieldCredentials:       "BLS withdrawal credentials (comma separated)",
	wizard.FieldExecutionAddress:  "Execution address",
	wizard.FieldEpoch:             "Exit epoch",
	wizard.FieldKeystoreFolder:    "Keystore folder",
	wizard.FieldMasterPassword:    "Master password (used for keystores without a password)",
}

// newPrompt returns a line based wizard host reading from in and writing to out.
// Secret fields are read without echo if in is a terminal.
func newPrompt(in io.Reader, out io.Writer) *prompt {
	p := &prompt{
		in:  bufio.NewReader(in),
		out: out,
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			_, _ = fmt.Fprintln(out)

			return string(b), err
		}
	}

	return p
}

type prompt struct {
	in         *bufio.Reader
	out        io.Writer
	readSecret func() (string, error)
}

// Run drives the flow until it is closed or exited.
func (p *prompt) Run(ctx context.Context, flow wizard.Flow) error {
	seq := wizard.New(flow, wizard.Hooks{
		Waiting: func(step wizard.Step) {
			switch step.Key {
			case wizard.StepKeystoreSelection, wizard.StepKeystoreConfiguration:
				p.printf("Reading keystores, this may take a while...\n")
			default:
				p.printf("Running the staking deposit tool, this may take a while...\n")
			}
		},
	})

	p.printf("Enter %s to go back, %s to clear a value.\n", backInput, clearInput)

	for {
		state := seq.State()
		p.render(state, len(flow.Steps))

		back, err := p.collect(seq, state)
		if err != nil {
			return err
		}

		if back {
			if seq.Retreat() == wizard.OutcomeExit {
				p.printf("Leaving the %s wizard.\n", flow.Name)
				return nil
			}

			continue
		}

		if seq.Advance(ctx) == wizard.OutcomeClose {
			p.printf("Done.\n")
			return nil
		}
	}
}

// render prints the active step, its errors and any information it presents.
func (p *prompt) render(state wizard.State, total int) {
	p.printf("\n[%d/%d] %s\n", state.Index+1, total, state.Step.Title)

	if state.Blocking != "" {
		p.printf("Error: %s\n", state.Blocking)
	}

	var fields []string
	for field := range state.Errors {
		fields = append(fields, string(field))
	}
	sort.Strings(fields)

	for _, field := range fields {
		p.printf("  %s: %s\n", label(wizard.Field(field), state.Values), state.Errors[wizard.Field(field)])
	}

	switch {
	case state.Step.Key == wizard.StepKeystoreConfiguration:
		for i, filename := range state.Values.Keystores() {
			pubkey := "unreadable"
			if file, err := keystore.LoadFile(filename); err == nil {
				pubkey = file.ShortPubkey()
			}
			p.printf("%3d. %s %s\n", i, filepath.Base(filename), pubkey)
		}
	case len(state.Fields) > 0:
		return
	case state.Last:
		if folder := state.Values[wizard.FieldFolder]; folder != "" {
			p.printf("Files written to %s\n", folder)
		}
	case state.Step.Key == wizard.StepMnemonicGeneration && state.Values[wizard.FieldMnemonic] != "":
		for i, word := range strings.Fields(state.Values[wizard.FieldMnemonic]) {
			p.printf("%3d. %s\n", i+1, word)
		}
	}
}

// collect prompts for each field of the step. It returns true if the user asked to go back.
func (p *prompt) collect(seq *wizard.Sequencer, state wizard.State) (bool, error) {
	if len(state.Fields) == 0 {
		p.printf("Press enter to continue or %s to go back: ", backInput)

		line, err := p.readLine()
		if err != nil {
			return false, err
		}

		return line == backInput, nil
	}

	for _, field := range state.Fields {
		current := state.Values[field]

		if current != "" && !field.Secret() {
			p.printf("%s [%s]: ", label(field, state.Values), current)
		} else {
			p.printf("%s: ", label(field, state.Values))
		}

		var (
			line string
			err  error
		)
		if field.Secret() && p.readSecret != nil {
			line, err = p.readSecret()
		} else {
			line, err = p.readLine()
		}
		if err != nil {
			return false, err
		}

		switch {
		case strings.TrimSpace(line) == backInput:
			return true, nil
		case strings.TrimSpace(line) == clearInput:
			line = ""
		case line == "" && current != "":
			continue
		}

		if err := seq.Set(field, line); err != nil {
			return false, err
		}
	}

	return false, nil
}

func (p *prompt) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	} else if err != nil {
		return "", errors.Wrap(err, "read input")
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (p *prompt) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func label(field wizard.Field, values wizard.Values) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}

	i, ok := field.KeystoreIndex()
	if !ok {
		return string(field)
	}

	name := strconv.Itoa(i)
	if keystores := values.Keystores(); i < len(keystores) {
		name = filepath.Base(keystores[i])
	}

	if field.Secret() {
		return "Password of " + name + " (empty uses the master password)"
	}

	return "Validator index of " + name
}
