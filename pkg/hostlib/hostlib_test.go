package hostlib_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/native"
	"github.com/solisoft/soli-lang-sub002/pkg/embed"
	"github.com/solisoft/soli-lang-sub002/pkg/hostlib"
)

func newEngine(t *testing.T, opts hostlib.Options) (*embed.Engine, *hostlib.Host) {
	t.Helper()
	reg := native.NewRegistry()
	host, err := hostlib.Install(reg, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { host.Close() })
	e, err := embed.New(embed.WithRegistry(reg))
	if err != nil {
		t.Fatal(err)
	}
	return e, host
}

func run(t *testing.T, e *embed.Engine, src string) evaluator.Object {
	t.Helper()
	result, err := e.RunSource(src)
	if err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return result
}

func TestPrintWritesDisplayStrings(t *testing.T) {
	var out bytes.Buffer
	e, _ := newEngine(t, hostlib.Options{Stdout: &out})
	run(t, e, `print("total:", 1 + 2, [1, 2])`)
	if got := out.String(); got != "total: 3 [1, 2]\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestLogWritesToStderr(t *testing.T) {
	var errOut bytes.Buffer
	e, _ := newEngine(t, hostlib.Options{Stderr: &errOut})
	run(t, e, `log("starting")`)
	if !strings.HasSuffix(errOut.String(), " starting\n") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	e, _ := newEngine(t, hostlib.Options{})
	result := run(t, e, `
let doc = yamlDecode(yamlEncode({name: "soli", tags: ["lang", "vm"], port: 8080}))
doc["name"] + ":" + str(doc["port"]) + ":" + doc["tags"][1]
`)
	s := result.(*evaluator.String)
	if s.Value != "soli:8080:vm" {
		t.Errorf("result = %q", s.Value)
	}
}

func TestYAMLDecodeErrorIsCatchable(t *testing.T) {
	e, _ := newEngine(t, hostlib.Options{})
	result := run(t, e, `
try {
  yamlDecode("key: [unclosed")
  "no error"
} catch (e: ValueError) {
  "caught"
}
`)
	if s := result.(*evaluator.String); s.Value != "caught" {
		t.Errorf("result = %q", s.Value)
	}
}

func TestUUIDNewAndParse(t *testing.T) {
	e, _ := newEngine(t, hostlib.Options{})
	result := run(t, e, `uuidParse(uuidNew())`)
	s := result.(*evaluator.String)
	if len(s.Value) != 36 {
		t.Errorf("uuid = %q, want canonical form", s.Value)
	}
	if _, err := e.RunSource(`uuidParse("not-a-uuid")`); err == nil {
		t.Error("expected uuidParse to reject garbage")
	}
}

func TestDBExecAndQuery(t *testing.T) {
	e, _ := newEngine(t, hostlib.Options{})
	result := run(t, e, `
dbExec("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
dbExec("INSERT INTO users (name) VALUES (?)", "ada")
dbExec("INSERT INTO users (name) VALUES (?)", "grace")
let rows = dbQuery("SELECT name FROM users ORDER BY id")
join([rows[0]["name"], rows[1]["name"]], ",")
`)
	if s := result.(*evaluator.String); s.Value != "ada,grace" {
		t.Errorf("rows = %q", s.Value)
	}
}

func TestDBRejectsUnbindableParam(t *testing.T) {
	e, _ := newEngine(t, hostlib.Options{})
	_, err := e.RunSource(`dbExec("SELECT ?", [1, 2])`)
	rerr, ok := err.(*embed.RuntimeError)
	if !ok {
		t.Fatalf("error is %T, want *RuntimeError", err)
	}
	if rerr.Err.Kind != evaluator.TypeErrorKind {
		t.Errorf("kind = %s, want TypeError", rerr.Err.Kind)
	}
}

func TestDelayedFutureForcesTransparently(t *testing.T) {
	e, _ := newEngine(t, hostlib.Options{})
	result := run(t, e, `
let f = delayed(1, 20)
f + 22
`)
	if n := result.(*evaluator.Integer); n.Value != 42 {
		t.Errorf("f + 22 = %d, want 42", n.Value)
	}
}

func TestNowAdvances(t *testing.T) {
	e, _ := newEngine(t, hostlib.Options{})
	result := run(t, e, `
let before = now()
sleep(2)
now() >= before
`)
	if result != evaluator.TRUE {
		t.Errorf("now() went backwards: %s", result.Inspect())
	}
}
