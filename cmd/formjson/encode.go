package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"

	"github.com/tomasbasham/formjson"
	"github.com/tomasbasham/formjson/internal/errors"
)

// EncodeCmd encodes a single form submission
type EncodeCmd struct {
	HTML          string `help:"HTML page holding the submitting element." type:"path"`
	Selector      string `help:"CSS selector of the submitting element." short:"s"`
	Body          string `help:"File of url-encoded form data, or - for stdin. Without it and with --html, the form's own values are used." short:"b"`
	Output        string `help:"Path to the output file. Writes to stdout when empty." short:"o" type:"path"`
	IgnoreDeepKey bool   `help:"Do not expand dotted and bracketed keys."`
	NoCompact     bool   `help:"Keep empty items in top-level arrays."`
	MaxIndex      int    `help:"Largest explicit array index honoured. Negative uses the configured value." default:"-1"`
	Indent        string `help:"Indent the JSON with this string. Defaults to two spaces on a terminal."`
}

// Run executes the encode command
func (c *EncodeCmd) Run(app *App) error {
	opts := app.Config.EncodeOptions()
	if c.IgnoreDeepKey {
		opts = append(opts, formjson.WithoutNesting())
	}
	if c.NoCompact {
		opts = append(opts, formjson.WithoutCompaction())
	}
	if c.MaxIndex >= 0 {
		opts = append(opts, formjson.WithMaxIndex(c.MaxIndex))
	}

	values, err := c.readValues(app)
	if err != nil {
		return err
	}

	var data []byte
	if c.HTML != "" {
		form, err := c.readForm(app)
		if err != nil {
			return err
		}
		data, err = formjson.EncodeForm(form, values, opts...)
		if err != nil {
			return errors.NewEncodeError("failed to encode form", err)
		}
	} else {
		data, err = formjson.Marshal(values, opts...)
		if err != nil {
			return errors.NewEncodeError("failed to encode form data", err)
		}
	}

	app.Logger.Debug("encoded form", "keys", values.Len(), "bytes", len(data))
	return c.write(app, data)
}

// readValues returns nil when the form's own values should be collected.
func (c *EncodeCmd) readValues(app *App) (*formjson.Values, error) {
	var r io.Reader
	switch {
	case c.Body == "-":
		r = app.Stdin
	case c.Body != "":
		f, err := os.Open(c.Body)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewInputError("failed to open body", errors.ErrFileNotFound)
			}
			return nil, errors.NewInputError("failed to open body", err)
		}
		defer f.Close()
		r = f
	case c.HTML != "":
		return nil, nil
	case isTerminal(app.Stdin):
		return nil, errors.NewInputError("nothing to read", errors.ErrNoInput)
	default:
		r = app.Stdin
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInputError("failed to read body", err)
	}
	values, err := formjson.ParseQuery(string(bytes.TrimSpace(b)))
	if err != nil {
		return nil, errors.NewParsingError("invalid form data", err)
	}
	return values, nil
}

func (c *EncodeCmd) readForm(app *App) (*formjson.Form, error) {
	f, err := os.Open(c.HTML)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError("failed to open html", errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError("failed to open html", err)
	}
	defer f.Close()

	selector := c.Selector
	if selector == "" {
		selector = app.Config.Selector
	}
	form, err := formjson.ParseForm(f, selector)
	switch {
	case stderrors.Is(err, formjson.ErrNoMatch):
		return nil, errors.NewParsingError("failed to resolve form", errors.ErrNoForm)
	case err != nil:
		return nil, errors.NewParsingError("failed to parse html", err)
	}
	return form, nil
}

func (c *EncodeCmd) write(app *App, data []byte) error {
	indent := c.Indent
	if indent == "" {
		indent = app.Config.Output.Indent
	}
	if indent == "" && c.Output == "" && isTerminal(app.Stdout) {
		indent = "  "
	}
	if indent != "" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", indent); err != nil {
			return errors.NewOutputError("failed to indent JSON", err)
		}
		data = buf.Bytes()
	}
	data = append(data, '\n')

	if c.Output == "" {
		if _, err := app.Stdout.Write(data); err != nil {
			return errors.NewOutputError("failed to write JSON", err)
		}
		return nil
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return errors.NewOutputError("failed to write output file", err)
	}
	return nil
}
