// Command sil-debug-web compiles a contract, executes one invocation
// against a canonical transaction, and serves the resulting trace over
// HTTP for a debugger frontend. With --out or --no-serve it writes the
// trace artifact to disk instead.
package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btclog"
	"github.com/davecgh/go-spew/spew"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/Manyfestation/silverscript/ast"
	"github.com/Manyfestation/silverscript/compiler"
	"github.com/Manyfestation/silverscript/debug"
	"github.com/Manyfestation/silverscript/trace"
	"github.com/Manyfestation/silverscript/vm"
)

const defaultTemplate = `pragma silverscript ^0.1.0;

contract DebugPoC(int floor) {
    function bump(int x) {
        int y = x + 1;
        require(y > 0);
    }

    function checkPair(int leftInput, int rightInput) {
        int left = leftInput + rightInput;
        int right = left * 2;
        require(right >= left);
    }

    entrypoint function main(int a, int b) {
        int seed = a + floor;
        checkPair(a, b);
        bump(seed);
        require(seed >= floor);
        require(b >= 0);
    }
}
`

var log btclog.Logger

func main() {
	app := &cli.App{
		Name:      "sil-debug-web",
		Usage:     "compile a contract, trace one invocation, and serve the debugger API",
		ArgsUsage: "[contract.sil]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "function", Usage: "entrypoint to invoke (default: first entrypoint)"},
			&cli.StringSliceFlag{Name: "arg", Usage: "function argument value (repeatable)"},
			&cli.StringSliceFlag{Name: "ctor-arg", Usage: "constructor argument value (repeatable)"},
			&cli.BoolFlag{Name: "no-selector", Usage: "require the contract to have exactly one entrypoint"},
			&cli.StringFlag{Name: "host", Value: "127.0.0.1", Usage: "listen address"},
			&cli.IntFlag{Name: "port", Value: 7878, Usage: "listen port"},
			&cli.StringFlag{Name: "out", Usage: "write the trace artifact to this file"},
			&cli.BoolFlag{Name: "no-serve", Usage: "generate the trace and exit without serving"},
			&cli.StringFlag{Name: "debuglevel", Value: "info", Usage: "logging level {trace, debug, info, warn, error, critical}"},
			&cli.BoolFlag{Name: "verbose", Usage: "dump the parsed contract tree"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	backend := btclog.NewBackend(os.Stderr)
	log = backend.Logger("MAIN")
	level, ok := btclog.LevelFromString(c.String("debuglevel"))
	if !ok {
		return fmt.Errorf("unknown debug level %q", c.String("debuglevel"))
	}
	log.SetLevel(level)
	vmLog := backend.Logger("VMEN")
	vmLog.SetLevel(level)
	vm.UseLogger(vmLog)
	debugLog := backend.Logger("DEBG")
	debugLog.SetLevel(level)
	debug.UseLogger(debugLog)

	source := defaultTemplate
	if path := c.Args().First(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		source = string(data)
	}

	if c.Bool("verbose") {
		contract, err := ast.ParseContract(source)
		if err != nil {
			return err
		}
		log.Infof("parsed contract:\n%s", spew.Sdump(contract))
	}

	srv := &server{
		source: source,
		run: runConfig{
			Function: c.String("function"),
			CtorArgs: c.StringSlice("ctor-arg"),
			Args:     c.StringSlice("arg"),
		},
		expectNoSelector: c.Bool("no-selector"),
	}

	if out := c.String("out"); out != "" || c.Bool("no-serve") {
		tr, err := srv.buildTrace(traceRequest{
			Source:           source,
			Function:         srv.run.Function,
			CtorArgs:         srv.run.CtorArgs,
			Args:             srv.run.Args,
			ExpectNoSelector: srv.expectNoSelector,
		})
		if err != nil {
			return err
		}
		data, err := json.Marshal(tr)
		if err != nil {
			return err
		}
		if out != "" {
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			log.Infof("wrote trace artifact to %s", out)
		}
		if c.Bool("no-serve") {
			return nil
		}
	}

	addr := fmt.Sprintf("%s:%d", c.String("host"), c.Int("port"))
	log.Infof("sil-debug-web listening on http://%s/", addr)
	return http.ListenAndServe(addr, cors.AllowAll().Handler(srv.routes()))
}

type runConfig struct {
	Function string   `json:"function,omitempty"`
	CtorArgs []string `json:"ctor_args"`
	Args     []string `json:"args"`
}

type server struct {
	source           string
	run              runConfig
	expectNoSelector bool
}

func (s *server) routes() http.Handler {
	r := httprouter.New()
	r.GET("/api/init", s.init)
	r.POST("/api/outline", s.outline)
	r.POST("/api/sigscript", s.sigscript)
	r.POST("/api/trace", s.trace)
	r.GET("/api/keygen", s.keygen)

	// legacy routes used by older frontends
	r.GET("/trace", s.legacyTrace)
	r.POST("/compile", s.trace)
	return r
}

type outlineRequest struct {
	Source string `json:"source"`
}

type traceRequest struct {
	Source           string   `json:"source"`
	Function         string   `json:"function,omitempty"`
	CtorArgs         []string `json:"ctor_args"`
	Args             []string `json:"args"`
	ExpectNoSelector bool     `json:"expect_no_selector"`
}

type initResponse struct {
	Source           string    `json:"source"`
	Run              runConfig `json:"run"`
	ExpectNoSelector bool      `json:"expect_no_selector"`
}

type outlineResponse struct {
	ContractName      string                 `json:"contract_name"`
	ConstructorParams []compiler.ABIParam    `json:"constructor_params"`
	Functions         []compiler.FunctionSig `json:"functions"`
	WithoutSelector   bool                   `json:"without_selector"`
}

type sigscriptResponse struct {
	ContractName    string `json:"contract_name"`
	FunctionName    string `json:"function_name"`
	SelectorIndex   *int   `json:"selector_index,omitempty"`
	SigScriptHex    string `json:"sigscript_hex"`
	SigScriptLen    int    `json:"sigscript_len"`
	WithoutSelector bool   `json:"without_selector"`
}

type keygenResponse struct {
	Pubkey    string `json:"pubkey"`
	Sig       string `json:"sig"`
	SecretKey string `json:"secret_key"`
	PKH       string `json:"pkh"`
}

func (s *server) init(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, initResponse{
		Source:           s.source,
		Run:              s.run,
		ExpectNoSelector: s.expectNoSelector,
	})
}

func (s *server) outline(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var r outlineRequest
	if !readJSON(w, req, &r) {
		return
	}
	out, err := buildOutline(r.Source)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) sigscript(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var r traceRequest
	if !readJSON(w, req, &r) {
		return
	}
	out, err := buildSigScript(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) trace(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var r traceRequest
	if !readJSON(w, req, &r) {
		return
	}
	tr, err := s.buildTrace(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (s *server) legacyTrace(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	tr, err := s.buildTrace(traceRequest{
		Source:           s.source,
		Function:         s.run.Function,
		CtorArgs:         s.run.CtorArgs,
		Args:             s.run.Args,
		ExpectNoSelector: s.expectNoSelector,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func (s *server) keygen(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		writeErr(w, err)
		return
	}
	secret := priv.Serialize()
	pubkey := schnorr.SerializePubKey(priv.PubKey())
	pkh := blake2b.Sum256(pubkey)
	writeJSON(w, http.StatusOK, keygenResponse{
		Pubkey:    "0x" + hex.EncodeToString(pubkey),
		Sig:       "0x" + hex.EncodeToString(secret),
		SecretKey: "0x" + hex.EncodeToString(secret),
		PKH:       "0x" + hex.EncodeToString(pkh[:]),
	})
}

func buildOutline(source string) (*outlineResponse, error) {
	contract, err := ast.ParseContract(source)
	if err != nil {
		return nil, err
	}
	entrypoints := contract.Entrypoints()
	if len(entrypoints) == 0 {
		return nil, fmt.Errorf("contract has no entrypoint functions")
	}
	withoutSelector := len(entrypoints) == 1
	out := &outlineResponse{
		ContractName:    contract.Name,
		WithoutSelector: withoutSelector,
	}
	for _, p := range contract.Params {
		out.ConstructorParams = append(out.ConstructorParams, compiler.ABIParam{Name: p.Name, Type: p.TypeName})
	}
	for idx, fn := range entrypoints {
		sig := compiler.FunctionSig{Name: fn.Name, Entrypoint: true}
		if !withoutSelector {
			i := idx
			sig.SelectorIndex = &i
		}
		for _, p := range fn.Params {
			sig.Params = append(sig.Params, compiler.ABIParam{Name: p.Name, Type: p.TypeName})
		}
		out.Functions = append(out.Functions, sig)
	}
	return out, nil
}

// resolve runs the shared front half of the sigscript and trace paths:
// parse, default-fill constructor arguments, compile, select the
// function, default-fill and auto-sign its arguments.
func resolve(r traceRequest) (*compiler.CompiledContract, compiler.FunctionSig, []string, []string, error) {
	contract, err := ast.ParseContract(r.Source)
	if err != nil {
		return nil, compiler.FunctionSig{}, nil, nil, err
	}
	if r.ExpectNoSelector && len(contract.Entrypoints()) != 1 {
		return nil, compiler.FunctionSig{}, nil, nil,
			fmt.Errorf("--no-selector requires exactly one entrypoint function")
	}
	ctorParams := make([]compiler.ABIParam, len(contract.Params))
	for i, p := range contract.Params {
		ctorParams[i] = compiler.ABIParam{Name: p.Name, Type: p.TypeName}
	}
	ctorArgs, err := trace.FillArgs(ctorParams, r.CtorArgs)
	if err != nil {
		return nil, compiler.FunctionSig{}, nil, nil, err
	}
	compiled, err := compiler.Compile(contract, ctorArgs)
	if err != nil {
		return nil, compiler.FunctionSig{}, nil, nil, err
	}
	fnName := r.Function
	if fnName == "" {
		fnName = compiled.Entrypoints()[0].Name
	}
	fn, ok := compiled.Function(fnName)
	if !ok {
		return nil, compiler.FunctionSig{}, nil, nil, fmt.Errorf("function %q not found", fnName)
	}
	args, err := trace.FillArgs(fn.Params, r.Args)
	if err != nil {
		return nil, compiler.FunctionSig{}, nil, nil, err
	}
	args, err = trace.AutoSignArgs(fn.Params, args, trace.DummyTx(compiled.Program))
	if err != nil {
		return nil, compiler.FunctionSig{}, nil, nil, err
	}
	return compiled, fn, ctorArgs, args, nil
}

func buildSigScript(r traceRequest) (*sigscriptResponse, error) {
	compiled, fn, _, args, err := resolve(r)
	if err != nil {
		return nil, err
	}
	sigScript, err := compiled.BuildSigScript(fn.Name, args)
	if err != nil {
		return nil, err
	}
	return &sigscriptResponse{
		ContractName:    compiled.ContractName,
		FunctionName:    fn.Name,
		SelectorIndex:   fn.SelectorIndex,
		SigScriptHex:    hex.EncodeToString(sigScript),
		SigScriptLen:    len(sigScript),
		WithoutSelector: compiled.WithoutSelector,
	}, nil
}

func (s *server) buildTrace(r traceRequest) (*trace.Trace, error) {
	if r.ExpectNoSelector {
		contract, err := ast.ParseContract(r.Source)
		if err != nil {
			return nil, err
		}
		if len(contract.Entrypoints()) != 1 {
			return nil, fmt.Errorf("--no-selector requires exactly one entrypoint function")
		}
	}
	return trace.Build(trace.Request{
		Source:   r.Source,
		Function: r.Function,
		CtorArgs: r.CtorArgs,
		Args:     r.Args,
	})
}

type errResponse struct {
	Error string    `json:"error"`
	Span  *ast.Span `json:"span,omitempty"`
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errResponse{Error: err.Error(), Span: errSpan(err)})
}

func errSpan(err error) *ast.Span {
	var pe *ast.ParseError
	if errors.As(err, &pe) {
		s := pe.Span
		return &s
	}
	var ce compiler.Error
	if errors.As(err, &ce) {
		return ce.Span
	}
	return nil
}

func readJSON(w http.ResponseWriter, req *http.Request, v interface{}) bool {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "failed to read request body"})
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("writing response: %v", err)
	}
}
