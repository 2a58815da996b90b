// Command rawhttp inspects, sends and serves raw HTTP/1.x messages.
//
// Usage:
//
//	rawhttp parse [-response] [-strict] [-json] [file]
//	rawhttp send [-timeout 10s] [file]
//	rawhttp serve [-addr :8080] [-rate 0]
//
// parse reads a message from the file (or stdin), parses it and prints
// it back, either re-serialized or as JSON. send parses a request and
// performs the exchange over TCP. serve runs an echo server that
// answers every request with a summary of what it parsed.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fastjson"
	"golang.org/x/time/rate"

	"github.com/rawhttp/rawhttp"
	"github.com/rawhttp/rawhttp/log"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "parse":
		err = runParse(os.Args[2:])
	case "send":
		err = runSend(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: rawhttp parse|send|serve [flags] [file]")
}

// readInput loads the message bytes from the positional file argument,
// or stdin when none is given.
func readInput(args []string) ([]byte, error) {
	if len(args) > 0 {
		return os.ReadFile(args[0])
	}
	return io.ReadAll(os.Stdin)
}

func runParse(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	asResponse := fs.Bool("response", false, "parse a response instead of a request")
	strict := fs.Bool("strict", false, "use strict RFC 7230 framing")
	asJSON := fs.Bool("json", false, "print the parsed message as JSON")
	fs.Parse(args)

	input, err := readInput(fs.Args())
	if err != nil {
		return err
	}
	opts := rawhttp.DefaultOptions()
	if *strict {
		opts = rawhttp.StrictOptions()
	}
	parser := rawhttp.NewParser(opts)

	if *asResponse {
		res, err := parser.ParseResponseBytes(input)
		if err != nil {
			return err
		}
		if res, err = res.Eagerly(); err != nil {
			return err
		}
		return printResponse(res, *asJSON)
	}
	req, err := parser.ParseRequestBytes(input)
	if err != nil {
		return err
	}
	if req, err = req.Eagerly(); err != nil {
		return err
	}
	return printRequest(req, *asJSON)
}

// jsonMessage is the JSON shape of a parsed message. Headers stay an
// ordered list of pairs, not a map, to mirror the wire.
type jsonMessage struct {
	Method  string       `json:"method,omitempty"`
	URI     string       `json:"uri,omitempty"`
	Status  int          `json:"status,omitempty"`
	Reason  string       `json:"reason,omitempty"`
	Version string       `json:"version"`
	Headers []jsonHeader `json:"headers"`
	Body    string       `json:"body,omitempty"`
}

type jsonHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func jsonHeaders(h *rawhttp.Header) []jsonHeader {
	fields := h.Fields()
	out := make([]jsonHeader, len(fields))
	for i, f := range fields {
		out[i] = jsonHeader{Name: f.Name, Value: f.Value}
	}
	return out
}

func bodyString(b *rawhttp.BodyReader) (string, error) {
	if b == nil {
		return "", nil
	}
	data, err := b.Decode()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printRequest(req *rawhttp.Request, asJSON bool) error {
	if !asJSON {
		_, err := req.WriteTo(os.Stdout)
		return err
	}
	body, err := bodyString(req.Body)
	if err != nil {
		return err
	}
	return printJSON(jsonMessage{
		Method:  req.Line.Method,
		URI:     req.Line.URI.String(),
		Version: req.Line.Version.String(),
		Headers: jsonHeaders(req.Headers),
		Body:    body,
	})
}

func printResponse(res *rawhttp.Response, asJSON bool) error {
	if !asJSON {
		_, err := res.WriteTo(os.Stdout)
		return err
	}
	body, err := bodyString(res.Body)
	if err != nil {
		return err
	}
	return printJSON(jsonMessage{
		Status:  res.Line.Code,
		Reason:  res.Line.Reason,
		Version: res.Line.Version.String(),
		Headers: jsonHeaders(res.Headers),
		Body:    body,
	})
}

func printJSON(m jsonMessage) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	timeout := fs.Duration("timeout", 10*time.Second, "exchange timeout")
	fs.Parse(args)

	input, err := readInput(fs.Args())
	if err != nil {
		return err
	}
	parser := rawhttp.NewParser()
	req, err := parser.ParseRequestBytes(input)
	if err != nil {
		return err
	}
	if req, err = req.Eagerly(); err != nil {
		return err
	}
	warnOnInvalidJSONBody(req)

	cfg := rawhttp.DefaultClientConfig()
	cfg.Timeout = *timeout
	client := rawhttp.NewClient(cfg)
	res, err := client.Send(context.Background(), req)
	if err != nil {
		return err
	}
	_, err = res.WriteTo(os.Stdout)
	return err
}

// warnOnInvalidJSONBody validates the request body when it claims to be
// JSON, so a broken payload is caught before it goes on the wire.
func warnOnInvalidJSONBody(req *rawhttp.Request) {
	if req.Body == nil {
		return
	}
	contentType, _ := req.Headers.GetFirst("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return
	}
	data, err := req.Body.Decode()
	if err != nil {
		return
	}
	if err := fastjson.ValidateBytes(data); err != nil {
		log.Warn().Err(err).Msg("request body is not valid JSON")
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	limit := fs.Float64("rate", 0, "max connections per second, 0 for unlimited")
	fs.Parse(args)

	cfg := rawhttp.DefaultServerConfig()
	cfg.Addr = *addr
	cfg.RateLimit = rate.Limit(*limit)
	server := rawhttp.NewServer(echoHandler, cfg)
	return server.ListenAndServe()
}

// echoHandler answers with a plain-text summary of the parsed request.
func echoHandler(req *rawhttp.Request) *rawhttp.Response {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", req.Line.Method, req.Line.URI.String(), req.Line.Version)
	for _, f := range req.Headers.Fields() {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Value)
	}
	if req.Body != nil {
		data, err := req.Body.Decode()
		if err == nil {
			fmt.Fprintf(&b, "\nbody (%d bytes): %s\n", len(data), data)
		}
	}
	return rawhttp.NewResponse(rawhttp.StatusOK, []byte(b.String()))
}
