package advisor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/advisor/pkg/advice"
	"github.com/alexisbeaulieu97/advisor/pkg/logger"
)

var errInsufficientFunds = errors.New("insufficient funds")

type account struct {
	mu      sync.Mutex
	balance int
}

func (a *account) withdraw(amount int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount > a.balance {
		return a.balance, errInsufficientFunds
	}
	a.balance -= amount
	return a.balance, nil
}

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// recorder implements every instance hook and writes each call to a journal.
type recorder struct {
	advice.Toggle
	name string
	log  *journal

	beforeErr   error
	throwingErr error
	afterErr    error
	panicIn     string
}

func (r *recorder) BeforeMethod(_ any, method advice.Method, args advice.Args, pluginType string) error {
	r.log.add("%s.before(%s,%s)", r.name, method.Name, pluginType)
	if r.panicIn == "before" {
		panic(r.name + " exploded")
	}
	return r.beforeErr
}

func (r *recorder) OnThrowing(_ any, method advice.Method, _ advice.Args, err error, pluginType string) error {
	r.log.add("%s.throwing(%s,%v)", r.name, method.Name, err)
	if r.panicIn == "throwing" {
		panic(r.name + " exploded")
	}
	return r.throwingErr
}

func (r *recorder) AfterMethod(_ any, method advice.Method, _ advice.Args, result any, pluginType string) error {
	r.log.add("%s.after(%s,%v)", r.name, method.Name, result)
	if r.panicIn == "after" {
		panic(r.name + " exploded")
	}
	return r.afterErr
}

// beforeOnly implements a single hook.
type beforeOnly struct {
	log *journal
}

func (b *beforeOnly) BeforeMethod(_ any, method advice.Method, _ advice.Args, _ string) error {
	b.log.add("beforeOnly.before(%s)", method.Name)
	return nil
}

// argRewriter doubles the first int argument.
type argRewriter struct{}

func (argRewriter) BeforeMethod(_ any, _ advice.Method, args advice.Args, _ string) error {
	amount, ok := args.At(0).(int)
	if !ok {
		return fmt.Errorf("unexpected argument %T", args.At(0))
	}
	return args.Set(0, amount*2)
}

type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *logCapture) entries(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(c.buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func newCapturingLogger(t *testing.T) (*logger.Logger, *logCapture) {
	t.Helper()
	capture := &logCapture{}
	l, err := logger.New(logger.Options{Level: "debug", Writer: capture})
	require.NoError(t, err)
	return l, capture
}
