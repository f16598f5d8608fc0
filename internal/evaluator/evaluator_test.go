package evaluator

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/solarframe/ecmawalk/internal/astio"
	"github.com/solarframe/ecmawalk/internal/jsast"
	"github.com/solarframe/ecmawalk/internal/options"
	"github.com/solarframe/ecmawalk/internal/values"
)

// mustDecode builds a fresh realm and decodes src (an astio JSON
// document) against the realm's own interner, mirroring how
// pkg/ecmawalk.Engine.RunJSON wires the two together.
func mustDecode(t *testing.T, src string) (*jsast.Program, *Realm) {
	t.Helper()
	r := NewRealm(options.Default())
	prog, err := astio.DecodeProgram([]byte(src), r.Names)
	if err != nil {
		t.Fatalf("astio.DecodeProgram: %v", err)
	}
	return prog, r
}

func global(t *testing.T, r *Realm, name string) values.Value {
	t.Helper()
	sym, ok := r.Names.Lookup(name)
	if !ok {
		t.Fatalf("global %q was never interned", name)
	}
	v, err := r.Global.Get(sym, r.Names)
	if err != nil {
		t.Fatalf("reading global %q: %v", name, err)
	}
	return v
}

func wantNumber(t *testing.T, v values.Value, want float64) {
	t.Helper()
	n, ok := v.(values.Number)
	if !ok {
		t.Fatalf("value is %T (%s), want Number", v, v.String())
	}
	if float64(n) != want {
		t.Fatalf("got %v, want %v", float64(n), want)
	}
}

func wantString(t *testing.T, v values.Value, want string) {
	t.Helper()
	s, ok := v.(values.String)
	if !ok {
		t.Fatalf("value is %T (%s), want String", v, v.String())
	}
	if s.String() != want {
		t.Fatalf("got %q, want %q", s.String(), want)
	}
}

// Scenario 1 (spec.md §8, TDZ): a lexical binding accessed before its
// declarator runs throws a catchable ReferenceError; left uncaught, it
// aborts evaluation with the same category.
func TestEvalProgram_TDZCaught(t *testing.T) {
	src := `{
		"body": [
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"result"}}]},
			{"kind":"Try",
				"block":{"kind":"Block","body":[
					{"kind":"ExprStmt","expr":{"kind":"Ident","name":"x"}}
				]},
				"handler":{
					"param":{"kind":"Ident","name":"e"},
					"body":{"kind":"Block","body":[
						{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=",
							"target":{"kind":"Ident","name":"result"},
							"value":{"kind":"Member","object":{"kind":"Ident","name":"e"},"property":{"kind":"Ident","name":"name"},"computed":false}
						}}
					]}
				}
			},
			{"kind":"VarDecl","varKind":1,"declarators":[{"id":{"kind":"Ident","name":"x"},"init":{"kind":"Literal","litKind":3,"value":1,"raw":"1"}}]}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	if _, err := e.EvalProgram(prog); err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	wantString(t, global(t, r, "result"), "ReferenceError")
}

func TestEvalProgram_TDZUncaught(t *testing.T) {
	src := `{
		"body": [
			{"kind":"ExprStmt","expr":{"kind":"Ident","name":"z"}},
			{"kind":"VarDecl","varKind":1,"declarators":[{"id":{"kind":"Ident","name":"z"},"init":{"kind":"Literal","litKind":3,"value":5,"raw":"5"}}]}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	_, err := e.EvalProgram(prog)
	if err == nil {
		t.Fatal("expected an uncaught-TDZ error, got nil")
	}
	if !strings.Contains(err.Error(), "ReferenceError") {
		t.Fatalf("error %q does not name ReferenceError", err.Error())
	}
}

// Scenario 2 (spec.md §8, for-of IteratorClose): breaking out of a
// for-of loop over a generator must run the generator's return path,
// observable here as its finally block executing.
func TestEvalProgram_ForOfIteratorClose(t *testing.T) {
	src := `{
		"body": [
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"closed"},"init":{"kind":"Literal","litKind":2,"value":false,"raw":"false"}}]},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"seen"},"init":{"kind":"Literal","litKind":4,"value":"","raw":"\"\""}}]},
			{"kind":"FuncDecl","function":{
				"id":{"name":"gen"},
				"params":[],
				"generator":true,
				"body":{"kind":"Block","body":[
					{"kind":"Try",
						"block":{"kind":"Block","body":[
							{"kind":"ExprStmt","expr":{"kind":"Yield","argument":{"kind":"Literal","litKind":3,"value":1,"raw":"1"}}},
							{"kind":"ExprStmt","expr":{"kind":"Yield","argument":{"kind":"Literal","litKind":3,"value":2,"raw":"2"}}},
							{"kind":"ExprStmt","expr":{"kind":"Yield","argument":{"kind":"Literal","litKind":3,"value":3,"raw":"3"}}}
						]},
						"finalizer":{"kind":"Block","body":[
							{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=","target":{"kind":"Ident","name":"closed"},"value":{"kind":"Literal","litKind":2,"value":true,"raw":"true"}}}
						]}
					}
				]}
			}},
			{"kind":"ForOf",
				"left":{"kind":"VarDecl","varKind":2,"declarators":[{"id":{"kind":"Ident","name":"v"}}]},
				"right":{"kind":"Call","callee":{"kind":"Ident","name":"gen"},"arguments":[]},
				"body":{"kind":"Block","body":[
					{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=","target":{"kind":"Ident","name":"seen"},
						"value":{"kind":"Binary","op":"+","left":{"kind":"Ident","name":"seen"},"right":{"kind":"Ident","name":"v"}}}},
					{"kind":"If","test":{"kind":"Binary","op":"===","left":{"kind":"Ident","name":"v"},"right":{"kind":"Literal","litKind":3,"value":1,"raw":"1"}},
						"consequent":{"kind":"Break","hasLabel":false}}
				]}
			}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	if _, err := e.EvalProgram(prog); err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	wantString(t, global(t, r, "seen"), "1")
	v := global(t, r, "closed")
	if b, ok := v.(values.Boolean); !ok || !bool(b) {
		t.Fatalf("closed = %v, want true (break should have closed the generator)", v)
	}
}

// Scenario 3 (spec.md §8, Annex-B): a function declared directly inside
// a sloppy-mode block is also reachable, once the block runs, through
// the enclosing function/program scope's var binding of the same name.
func TestEvalProgram_AnnexBBlockFunctionHoisting(t *testing.T) {
	src := `{
		"body": [
			{"kind":"If","test":{"kind":"Literal","litKind":2,"value":true,"raw":"true"},
				"consequent":{"kind":"Block","body":[
					{"kind":"FuncDecl","function":{"id":{"name":"f"},"params":[],"body":{"kind":"Block","body":[
						{"kind":"Return","argument":{"kind":"Literal","litKind":3,"value":1,"raw":"1"}}
					]}}}
				]}
			},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"result"},"init":{
				"kind":"Conditional",
				"test":{"kind":"Binary","op":"===",
					"left":{"kind":"Unary","op":"typeof","argument":{"kind":"Ident","name":"f"}},
					"right":{"kind":"Literal","litKind":4,"value":"function","raw":"\"function\""}},
				"consequent":{"kind":"Call","callee":{"kind":"Ident","name":"f"},"arguments":[]},
				"alternate":{"kind":"Literal","litKind":3,"value":-1,"raw":"-1"}
			}}]}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	if _, err := e.EvalProgram(prog); err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	wantNumber(t, global(t, r, "result"), 1)
}

// Scenario 4 (spec.md §8, generator delegation): `yield*` forwards an
// inner generator's yielded values one at a time to the outer
// generator's own consumer before the outer body resumes.
func TestEvalProgram_GeneratorDelegation(t *testing.T) {
	src := `{
		"body": [
			{"kind":"FuncDecl","function":{"id":{"name":"inner"},"params":[],"generator":true,"body":{"kind":"Block","body":[
				{"kind":"ExprStmt","expr":{"kind":"Yield","argument":{"kind":"Literal","litKind":4,"value":"a","raw":"\"a\""}}},
				{"kind":"ExprStmt","expr":{"kind":"Yield","argument":{"kind":"Literal","litKind":4,"value":"b","raw":"\"b\""}}}
			]}}},
			{"kind":"FuncDecl","function":{"id":{"name":"outer"},"params":[],"generator":true,"body":{"kind":"Block","body":[
				{"kind":"ExprStmt","expr":{"kind":"Yield","delegate":true,"argument":{"kind":"Call","callee":{"kind":"Ident","name":"inner"},"arguments":[]}}},
				{"kind":"ExprStmt","expr":{"kind":"Yield","argument":{"kind":"Literal","litKind":4,"value":"c","raw":"\"c\""}}}
			]}}},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"result"},"init":{"kind":"Literal","litKind":4,"value":"","raw":"\"\""}}]},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"it"},"init":{"kind":"Call","callee":{"kind":"Ident","name":"outer"},"arguments":[]}}]},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"r"},"init":{"kind":"Call",
				"callee":{"kind":"Member","object":{"kind":"Ident","name":"it"},"property":{"kind":"Ident","name":"next"},"computed":false},"arguments":[]}}]},
			{"kind":"While",
				"test":{"kind":"Unary","op":"!","argument":{"kind":"Member","object":{"kind":"Ident","name":"r"},"property":{"kind":"Ident","name":"done"},"computed":false}},
				"body":{"kind":"Block","body":[
					{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=","target":{"kind":"Ident","name":"result"},
						"value":{"kind":"Binary","op":"+","left":{"kind":"Ident","name":"result"},
							"right":{"kind":"Member","object":{"kind":"Ident","name":"r"},"property":{"kind":"Ident","name":"value"},"computed":false}}}},
					{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=","target":{"kind":"Ident","name":"r"},"value":{"kind":"Call",
						"callee":{"kind":"Member","object":{"kind":"Ident","name":"it"},"property":{"kind":"Ident","name":"next"},"computed":false},"arguments":[]}}}
				]}
			}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	if _, err := e.EvalProgram(prog); err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	wantString(t, global(t, r, "result"), "abc")
}

// Scenario 5 (spec.md §8, derived-class super ordering): a derived
// constructor's own field/body effects run strictly after super()
// returns, never before.
func TestEvalProgram_DerivedClassSuperOrdering(t *testing.T) {
	src := `{
		"body": [
			{"kind":"ClassDecl","class":{"id":{"name":"Base"},"body":[
				{"memberKind":0,"key":{"kind":"Ident","name":"constructor"},"function":{"params":[],"body":{"kind":"Block","body":[
					{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=",
						"target":{"kind":"Member","object":{"kind":"This"},"property":{"kind":"Ident","name":"log"},"computed":false},
						"value":{"kind":"Literal","litKind":4,"value":"base","raw":"\"base\""}}}
				]}}}
			]}},
			{"kind":"ClassDecl","class":{"id":{"name":"Derived"},"superClass":{"kind":"Ident","name":"Base"},"body":[
				{"memberKind":0,"key":{"kind":"Ident","name":"constructor"},"function":{"params":[],"body":{"kind":"Block","body":[
					{"kind":"ExprStmt","expr":{"kind":"Call","callee":{"kind":"Super"},"arguments":[]}},
					{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=",
						"target":{"kind":"Member","object":{"kind":"This"},"property":{"kind":"Ident","name":"log"},"computed":false},
						"value":{"kind":"Binary","op":"+",
							"left":{"kind":"Member","object":{"kind":"This"},"property":{"kind":"Ident","name":"log"},"computed":false},
							"right":{"kind":"Literal","litKind":4,"value":"-derived","raw":"\"-derived\""}}}}
				]}}}
			]}},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"d"},"init":{"kind":"New","callee":{"kind":"Ident","name":"Derived"},"arguments":[]}}]},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"result"},"init":{"kind":"Member","object":{"kind":"Ident","name":"d"},"property":{"kind":"Ident","name":"log"},"computed":false}}]}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	if _, err := e.EvalProgram(prog); err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	wantString(t, global(t, r, "result"), "base-derived")
}

// Scenario 6 (spec.md §8, async await ordering): an async function
// runs synchronously to its first await, then yields control back to
// its caller; the continuation after that await only runs once the
// realm's job queue is drained. This module drains the job queue after
// every top-level statement rather than only once the whole script has
// run (internal/asynccps's Jobs doc: "a single FIFO job queue drains
// between statement-level yield points, approximating ... ordering"),
// so the continuation resumes immediately after the statement that
// called f(), before the following statement runs — "ACB", not the
// "ABC" a browser's single-microtask-checkpoint-per-script would give.
// What this pins down is that the continuation runs at all: before
// EvalProgram drained the queue, "C" would never appear.
func TestEvalProgram_AsyncAwaitOrdering(t *testing.T) {
	src := `{
		"body": [
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"log"},"init":{"kind":"Literal","litKind":4,"value":"","raw":"\"\""}}]},
			{"kind":"FuncDecl","function":{"id":{"name":"f"},"params":[],"async":true,"body":{"kind":"Block","body":[
				{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=","target":{"kind":"Ident","name":"log"},
					"value":{"kind":"Binary","op":"+","left":{"kind":"Ident","name":"log"},"right":{"kind":"Literal","litKind":4,"value":"A","raw":"\"A\""}}}},
				{"kind":"ExprStmt","expr":{"kind":"Await","argument":{"kind":"Literal","litKind":3,"value":0,"raw":"0"}}},
				{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=","target":{"kind":"Ident","name":"log"},
					"value":{"kind":"Binary","op":"+","left":{"kind":"Ident","name":"log"},"right":{"kind":"Literal","litKind":4,"value":"C","raw":"\"C\""}}}}
			]}}},
			{"kind":"ExprStmt","expr":{"kind":"Call","callee":{"kind":"Ident","name":"f"},"arguments":[]}},
			{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=","target":{"kind":"Ident","name":"log"},
				"value":{"kind":"Binary","op":"+","left":{"kind":"Ident","name":"log"},"right":{"kind":"Literal","litKind":4,"value":"B","raw":"\"B\""}}}}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	if _, err := e.EvalProgram(prog); err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	wantString(t, global(t, r, "log"), "ACB")
}

// Scenario 7 (spec.md §8, destructuring defaults/rest): an array
// pattern's default applies only to an `undefined` element, and its
// rest element collects whatever elements remain.
func TestEvalProgram_DestructuringDefaultsAndRest(t *testing.T) {
	src := `{
		"body": [
			{"kind":"FuncDecl","function":{"id":{"name":"f"},"params":[
				{"kind":"ArrayPattern","elements":[
					{"kind":"Ident","name":"a"},
					{"kind":"AssignPattern","target":{"kind":"Ident","name":"b"},"default":{"kind":"Literal","litKind":3,"value":10,"raw":"10"}},
					{"kind":"RestElement","argument":{"kind":"Ident","name":"rest"}}
				]}
			],"body":{"kind":"Block","body":[
				{"kind":"Return","argument":{"kind":"Binary","op":"+",
					"left":{"kind":"Binary","op":"+","left":{"kind":"Ident","name":"a"},"right":{"kind":"Ident","name":"b"}},
					"right":{"kind":"Member","object":{"kind":"Ident","name":"rest"},"property":{"kind":"Ident","name":"length"},"computed":false}}}
			]}}},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"result"},"init":{"kind":"Call",
				"callee":{"kind":"Ident","name":"f"},
				"arguments":[{"kind":"Array","elements":[
					{"kind":"Literal","litKind":3,"value":1,"raw":"1"},
					{"kind":"Literal","litKind":0,"raw":"undefined"},
					{"kind":"Literal","litKind":3,"value":2,"raw":"2"},
					{"kind":"Literal","litKind":3,"value":3,"raw":"3"}
				]}]
			}}]}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	if _, err := e.EvalProgram(prog); err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	// a=1, b defaults to 10 (source element is undefined), rest=[2,3].
	wantNumber(t, global(t, r, "result"), 1+10+2)
}

// Scenario 8 (spec.md §8, optional chaining): `obj?.[expr]` on a
// nullish object never evaluates expr.
func TestEvalProgram_OptionalChainingShortCircuit(t *testing.T) {
	src := `{
		"body": [
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"calls"},"init":{"kind":"Literal","litKind":3,"value":0,"raw":"0"}}]},
			{"kind":"FuncDecl","function":{"id":{"name":"bump"},"params":[],"body":{"kind":"Block","body":[
				{"kind":"ExprStmt","expr":{"kind":"Assign","op":"=","target":{"kind":"Ident","name":"calls"},
					"value":{"kind":"Binary","op":"+","left":{"kind":"Ident","name":"calls"},"right":{"kind":"Literal","litKind":3,"value":1,"raw":"1"}}}},
				{"kind":"Return","argument":{"kind":"Literal","litKind":3,"value":0,"raw":"0"}}
			]}}},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"obj"},"init":{"kind":"Literal","litKind":1,"raw":"null"}}]},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"result"},"init":{"kind":"Member",
				"object":{"kind":"Ident","name":"obj"},
				"property":{"kind":"Call","callee":{"kind":"Ident","name":"bump"},"arguments":[]},
				"computed":true,"optional":true}}]}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	if _, err := e.EvalProgram(prog); err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	wantNumber(t, global(t, r, "calls"), 0)
	if v := global(t, r, "result"); v != values.Undefined {
		t.Fatalf("result = %v, want undefined", v)
	}
}

// TestEvalProgram_ArrayIndexAndLength pins the array exotic-object
// read path (Get on an integer index or "length") that ordinary
// MemberExpression evaluation, not just assignment, must observe.
func TestEvalProgram_ArrayIndexAndLength(t *testing.T) {
	src := `{
		"body": [
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"arr"},"init":{"kind":"Array","elements":[
				{"kind":"Literal","litKind":3,"value":7,"raw":"7"},
				{"kind":"Literal","litKind":3,"value":8,"raw":"8"},
				{"kind":"Literal","litKind":3,"value":9,"raw":"9"}
			]}}]},
			{"kind":"VarDecl","varKind":0,"declarators":[{"id":{"kind":"Ident","name":"result"},"init":{"kind":"Binary","op":"+",
				"left":{"kind":"Member","object":{"kind":"Ident","name":"arr"},"property":{"kind":"Literal","litKind":3,"value":1,"raw":"1"},"computed":true},
				"right":{"kind":"Member","object":{"kind":"Ident","name":"arr"},"property":{"kind":"Ident","name":"length"},"computed":false}}}}]}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	if _, err := e.EvalProgram(prog); err != nil {
		t.Fatalf("EvalProgram: %v", err)
	}
	// arr[1] (8) + arr.length (3) = 11.
	wantNumber(t, global(t, r, "result"), 11)
}

// TestEvalProgram_UncaughtThrowSnapshot snapshots the top-level
// "uncaught exception" message shape EvalProgram reports for a plain
// `throw`, guarding its wording against accidental drift.
func TestEvalProgram_UncaughtThrowSnapshot(t *testing.T) {
	src := `{
		"body": [
			{"kind":"Throw","argument":{"kind":"Literal","litKind":4,"value":"boom","raw":"\"boom\""}}
		]
	}`
	prog, r := mustDecode(t, src)
	e := New(r, r.Options.MaxCallDepth)
	_, err := e.EvalProgram(prog)
	if err == nil {
		t.Fatal("expected an uncaught-throw error, got nil")
	}
	snaps.MatchSnapshot(t, err.Error())
}
