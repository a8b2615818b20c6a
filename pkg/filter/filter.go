// Package filter selects the transactions of a structured checkpoint that call
// one Move package and projects them into records for the sink.
//
// Every step of the access path
//
//	transactions[i].transaction.data[j].intent_message.value<V1>.kind<ProgrammableTransaction>.commands[k]<MoveCall>.package
//
// resolves to Found, Absent or Mismatched. Anything but Found means the
// transaction does not match; filtering never fails because of an unexpected
// shape. A transaction that matches but whose record fields do not resolve is
// returned as a Rejection.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ava-labs/checkpoint-indexer/pkg/sui"
	"github.com/ava-labs/checkpoint-indexer/pkg/utils"
)

// MatchedRecord is one matching transaction, ready for the sink.
type MatchedRecord struct {
	CheckpointSequence uint64          `json:"checkpoint_sequence"`
	TransactionIndex   int             `json:"transaction_index"`
	Sender             string          `json:"sender"`
	FunctionName       string          `json:"function_name"`
	Inputs             json.RawMessage `json:"inputs"`
	GasCost            json.RawMessage `json:"gas_cost"`
}

// FilteredTransaction is a matching transaction kept verbatim. It is the element
// type of the filtered output file.
type FilteredTransaction struct {
	CheckpointSequence uint64          `json:"checkpoint_sequence"`
	TransactionIndex   int             `json:"transaction_index"`
	Transaction        json.RawMessage `json:"transaction"`
	Effects            json.RawMessage `json:"effects"`
	Events             json.RawMessage `json:"events,omitempty"`
}

// Rejection is a matching transaction whose record could not be projected.
// Path is where resolution stopped.
type Rejection struct {
	CheckpointSequence uint64
	TransactionIndex   int
	Path               string
	Err                error
}

// Engine matches transactions against a single target package.
type Engine struct {
	log    *zap.SugaredLogger
	target string
}

// New returns an Engine for target, which may be given in any hex form
// accepted for 32-byte identifiers. Documents are compared against its
// canonical 0x-prefixed lowercase form.
func New(log *zap.SugaredLogger, target string) (*Engine, error) {
	if log == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	canonical, err := utils.CanonicalHex32(target)
	if err != nil {
		return nil, fmt.Errorf("invalid target package %q: %w", target, err)
	}
	return &Engine{log: log, target: canonical}, nil
}

// Target returns the canonical target package id.
func (e *Engine) Target() string {
	return e.target
}

// Filter returns one record per matching transaction in document order, and
// a Rejection for each matching transaction that Project refused.
func (e *Engine) Filter(doc sui.Document) ([]MatchedRecord, []Rejection) {
	var (
		out      []MatchedRecord
		rejected []Rejection
	)
	for _, ft := range e.Select(doc) {
		rec, err := e.Project(ft)
		if err != nil {
			rejected = append(rejected, RejectionOf(ft, err))
			continue
		}
		out = append(out, rec)
	}
	return out, rejected
}

// RejectionOf describes ft refused with err, an error returned by Project.
func RejectionOf(ft FilteredTransaction, err error) Rejection {
	r := Rejection{
		CheckpointSequence: ft.CheckpointSequence,
		TransactionIndex:   ft.TransactionIndex,
		Err:                err,
	}
	var ferr *FilterFieldError
	if errors.As(err, &ferr) {
		r.Path = ferr.Path
	}
	return r
}

// Select returns every matching transaction of doc in order. A document whose
// top level cannot be read yields nothing.
func (e *Engine) Select(doc sui.Document) []FilteredTransaction {
	root := node{path: "$", raw: json.RawMessage(doc)}

	seq, ferr := sequenceOf(root)
	if ferr != nil {
		e.debug(ferr)
		return nil
	}
	txsNode, ferr := root.field("transactions")
	if ferr != nil {
		e.debug(ferr)
		return nil
	}
	txs, ferr := txsNode.array()
	if ferr != nil {
		e.debug(ferr)
		return nil
	}

	var out []FilteredTransaction
	for i, tx := range txs {
		txn, ferr := tx.field("transaction")
		if ferr != nil {
			e.debug(ferr)
			continue
		}
		if _, ferr := e.match(txn); ferr != nil {
			e.debug(ferr)
			continue
		}
		ft := FilteredTransaction{
			CheckpointSequence: seq,
			TransactionIndex:   i,
			Transaction:        txn.raw,
		}
		if effects, ferr := tx.field("effects"); ferr == nil {
			ft.Effects = effects.raw
		}
		if events, ferr := tx.field("events"); ferr == nil {
			ft.Events = events.raw
		}
		out = append(out, ft)
	}
	return out
}

// Project turns a selected transaction into a MatchedRecord. The sender and
// inputs come from the first data entry, the function from the first matching
// MoveCall and the gas cost from the effects verbatim. The error is a
// *FilterFieldError naming the first field that did not resolve.
func (e *Engine) Project(ft FilteredTransaction) (MatchedRecord, error) {
	path := "$.transactions[" + strconv.Itoa(ft.TransactionIndex) + "]"
	txn := node{path: path + ".transaction", raw: ft.Transaction}
	effects := node{path: path + ".effects", raw: ft.Effects}

	function, ferr := e.match(txn)
	if ferr != nil {
		e.debug(ferr)
		return MatchedRecord{}, ferr
	}

	first, ferr := firstEntryV1(txn)
	if ferr != nil {
		e.debug(ferr)
		return MatchedRecord{}, ferr
	}
	sender, ferr := resolveString(first, step.field("sender"))
	if ferr != nil {
		e.debug(ferr)
		return MatchedRecord{}, ferr
	}
	inputs, ferr := resolve(first, step.field("kind"), step.variant("ProgrammableTransaction"), step.field("inputs"))
	if ferr != nil {
		e.debug(ferr)
		return MatchedRecord{}, ferr
	}
	gas, ferr := resolve(effects, step.anyVariant(), step.field("gas_used"))
	if ferr != nil {
		e.debug(ferr)
		return MatchedRecord{}, ferr
	}

	return MatchedRecord{
		CheckpointSequence: ft.CheckpointSequence,
		TransactionIndex:   ft.TransactionIndex,
		Sender:             sender,
		FunctionName:       function,
		Inputs:             inputs.raw,
		GasCost:            gas.raw,
	}, nil
}

// match returns the function of the first MoveCall into the target package
// across all data entries of txn.
func (e *Engine) match(txn node) (string, *FilterFieldError) {
	entries, ferr := resolveArray(txn, step.field("data"))
	if ferr != nil {
		return "", ferr
	}

	var last *FilterFieldError
	for _, entry := range entries {
		cmds, ferr := resolveArray(entry,
			step.field("intent_message"),
			step.field("value"),
			step.variant("V1"),
			step.field("kind"),
			step.variant("ProgrammableTransaction"),
			step.field("commands"),
		)
		if ferr != nil {
			last = ferr
			continue
		}
		for _, cmd := range cmds {
			call, ferr := cmd.variant("MoveCall")
			if ferr != nil {
				last = ferr
				continue
			}
			id, ferr := resolveString(call, step.field("package"))
			if ferr != nil {
				last = ferr
				continue
			}
			if id != e.target {
				continue
			}
			name, ferr := resolveString(call, step.field("function"))
			if ferr != nil {
				last = ferr
				continue
			}
			return name, nil
		}
	}
	if last == nil || last.Resolution != Mismatched {
		last = txn.fail(Absent)
	}
	return "", last
}

// debug logs shapes that look wrong. Absent variants and fields are routine
// (most transactions are not programmable calls into the target) and are not logged.
func (e *Engine) debug(ferr *FilterFieldError) {
	if ferr.Resolution == Mismatched {
		e.log.Debugw("unexpected transaction shape", "path", ferr.Path, "resolution", ferr.Resolution.String())
	}
}

// sequenceOf reads the sequence from the certified summary, or from a bare
// summary in documents that carry one.
func sequenceOf(root node) (uint64, *FilterFieldError) {
	n, ferr := resolve(root, step.field("checkpoint_summary"), step.field("data"), step.field("sequence_number"))
	if ferr != nil && ferr.Resolution == Absent {
		n, ferr = resolve(root, step.field("checkpoint_summary"), step.field("sequence_number"))
	}
	if ferr != nil {
		return 0, ferr
	}
	var seq uint64
	if err := json.Unmarshal(n.raw, &seq); err != nil {
		return 0, n.fail(Mismatched)
	}
	return seq, nil
}

func firstEntryV1(txn node) (node, *FilterFieldError) {
	data, ferr := resolveArray(txn, step.field("data"))
	if ferr != nil {
		return node{}, ferr
	}
	if len(data) == 0 {
		return node{}, (node{path: txn.path + ".data[0]"}).fail(Absent)
	}
	return resolve(data[0], step.field("intent_message"), step.field("value"), step.variant("V1"))
}

// stepFn descends one level.
type stepFn func(node) (node, *FilterFieldError)

type steps struct{}

// step builds path steps: step.field("x"), step.variant("V1"), step.anyVariant().
var step steps

func (steps) field(name string) stepFn {
	return func(n node) (node, *FilterFieldError) { return n.field(name) }
}

func (steps) variant(name string) stepFn {
	return func(n node) (node, *FilterFieldError) { return n.variant(name) }
}

func (steps) anyVariant() stepFn {
	return func(n node) (node, *FilterFieldError) { return n.anyVariant() }
}

func resolve(n node, path ...stepFn) (node, *FilterFieldError) {
	for _, s := range path {
		var ferr *FilterFieldError
		if n, ferr = s(n); ferr != nil {
			return node{}, ferr
		}
	}
	return n, nil
}

func resolveArray(n node, path ...stepFn) ([]node, *FilterFieldError) {
	n, ferr := resolve(n, path...)
	if ferr != nil {
		return nil, ferr
	}
	return n.array()
}

func resolveString(n node, path ...stepFn) (string, *FilterFieldError) {
	n, ferr := resolve(n, path...)
	if ferr != nil {
		return "", ferr
	}
	return n.str()
}
