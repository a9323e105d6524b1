package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	arena "github.com/pavanmanishd/regionarena"
)

type opCode uint8

const (
	opAlloc opCode = iota
	opVerify
	opReset
	opMark
	opPopTo
	opPop
	opFree
	opRecord
	opUnwind
)

// op is one step of an operation script such as "a:32,v:8,m,p:0".
type op struct {
	code opCode
	arg  int
	text string
}

var opNames = map[string]struct {
	code   opCode
	hasArg bool
}{
	"a":   {opAlloc, true},
	"v":   {opVerify, true},
	"r":   {opReset, false},
	"m":   {opMark, false},
	"p":   {opPopTo, true},
	"pop": {opPop, false},
	"f":   {opFree, true},
	"rec": {opRecord, false},
	"u":   {opUnwind, false},
}

// parseOps splits a comma-separated script into ops. Steps are "a:N" (alloc),
// "v:N" (verify), "r" (reset), "m" (mark), "p:I" (pop to mark I), "pop",
// "f:I" (free allocation I), "rec" (record) and "u" (unwind).
func parseOps(script string) ([]op, error) {
	var ops []op
	for i, tok := range strings.Split(script, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, argText, hasArg := strings.Cut(tok, ":")
		def, ok := opNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("step %d: unknown op %q", i, name)
		}
		if hasArg != def.hasArg {
			if def.hasArg {
				return nil, fmt.Errorf("step %d: %q needs an argument", i, name)
			}
			return nil, fmt.Errorf("step %d: %q takes no argument", i, name)
		}
		o := op{code: def.code, text: tok}
		if hasArg {
			n, err := strconv.Atoi(argText)
			if err != nil {
				return nil, fmt.Errorf("step %d: bad argument %q: %w", i, argText, err)
			}
			o.arg = n
		}
		ops = append(ops, o)
	}
	if len(ops) == 0 {
		return nil, errors.New("empty op script")
	}
	return ops, nil
}

// stepResult is what one op did to the arena.
type stepResult struct {
	Op        string `json:"op"`
	OK        bool   `json:"ok"`
	Result    string `json:"result"`
	SizeInUse int    `json:"size_in_use"`
}

// session replays ops against one arena and remembers the allocations and
// markers so later steps can refer to them by index.
type session struct {
	a       *arena.Arena
	allocs  [][]byte
	markers []arena.Marker
}

func (s *session) run(ops []op) ([]stepResult, error) {
	results := make([]stepResult, 0, len(ops))
	for _, o := range ops {
		res, err := s.step(o)
		if err != nil {
			return results, fmt.Errorf("%s: %w", o.text, err)
		}
		res.Op = o.text
		res.SizeInUse = s.a.SizeInUse()
		results = append(results, res)
	}
	return results, nil
}

// step returns an error only for scripts that refer to missing allocations
// or markers. Arena failures are reported in the result.
func (s *session) step(o op) (stepResult, error) {
	switch o.code {
	case opAlloc:
		b, err := s.a.Alloc(o.arg)
		if err != nil {
			return failed(err), nil
		}
		s.allocs = append(s.allocs, b)
		return stepResult{OK: true, Result: fmt.Sprintf("#%d len=%d", len(s.allocs)-1, len(b))}, nil
	case opVerify:
		ok := s.a.Verify(o.arg)
		return stepResult{OK: ok, Result: strconv.FormatBool(ok)}, nil
	case opReset:
		s.a.Reset()
		s.allocs = s.allocs[:0]
		s.markers = s.markers[:0]
		return stepResult{OK: true, Result: fmt.Sprintf("generation %d", s.a.Generation())}, nil
	case opMark:
		m, err := s.a.Mark()
		if err != nil {
			return failed(err), nil
		}
		s.markers = append(s.markers, m)
		return stepResult{OK: true, Result: fmt.Sprintf("marker #%d at %d", len(s.markers)-1, m.Offset())}, nil
	case opPopTo:
		if o.arg < 0 || o.arg >= len(s.markers) {
			return stepResult{}, fmt.Errorf("no marker #%d", o.arg)
		}
		return done(s.a.PopTo(s.markers[o.arg])), nil
	case opPop:
		return done(s.a.Pop()), nil
	case opFree:
		if o.arg < 0 || o.arg >= len(s.allocs) {
			return stepResult{}, fmt.Errorf("no allocation #%d", o.arg)
		}
		return done(s.a.Free(s.allocs[o.arg])), nil
	case opRecord:
		return done(s.a.Record()), nil
	case opUnwind:
		return done(s.a.Unwind()), nil
	}
	return stepResult{}, fmt.Errorf("unhandled op %d", o.code)
}

func done(err error) stepResult {
	if err != nil {
		return failed(err)
	}
	return stepResult{OK: true, Result: "ok"}
}

func failed(err error) stepResult {
	return stepResult{Result: err.Error()}
}
