// Package authctl implements a small operator CLI for the account API. It
// talks to the HTTP endpoints, so it can be pointed at any running instance.
package authctl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type App struct {
	baseURL string
	client  *http.Client
	in      *bufio.Reader
	out     io.Writer
}

func NewApp(baseURL string, in io.Reader, out io.Writer) *App {
	return &App{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// Run dispatches a single subcommand: register, login, verify or reset.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: authctl <register|login|verify|reset>")
	}

	switch args[0] {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	case "verify":
		return a.verify(ctx)
	case "reset":
		return a.reset(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *App) register(ctx context.Context) error {
	name, err := getSimpleText(a.in, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	return a.post(ctx, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": string(password),
	})
}

func (a *App) login(ctx context.Context) error {
	email, err := getSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	return a.post(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": string(password),
	})
}

func (a *App) verify(ctx context.Context) error {
	token, err := getSimpleText(a.in, "Enter verification token", a.out)
	if err != nil {
		return err
	}

	return a.post(ctx, "/api/auth/verify-email", map[string]string{"token": token})
}

func (a *App) reset(ctx context.Context) error {
	token, err := getSimpleText(a.in, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	return a.post(ctx, "/api/auth/reset-password", map[string]string{
		"token":    token,
		"password": string(password),
	})
}

// post sends the payload and prints the response body as-is. Non-2xx
// responses are reported as errors so scripts get a useful exit code.
func (a *App) post(ctx context.Context, path string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, strings.TrimSpace(string(respBody)))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
