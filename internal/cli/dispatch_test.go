package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskman/internal/api"
	"taskman/internal/backend/restapi"
	"taskman/internal/cli"
	"taskman/internal/commands"
	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/prompt"
	"taskman/internal/service"
	"taskman/internal/session"
	"taskman/internal/testutil"
)

// factoryCall records what the dispatcher asked the factory for.
type factoryCall struct {
	apiURL string
	token  string
}

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService, calls *[]factoryCall) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, apiURL, token string) (service.Service, error) {
		if calls != nil {
			*calls = append(*calls, factoryCall{apiURL: apiURL, token: token})
		}
		return svc, nil
	}
}

// apiFactory talks to a real HTTP server, the way main does.
func apiFactory(ctx context.Context, cfg *config.Config, apiURL, token string) (service.Service, error) {
	return restapi.NewFromOptions(api.Options{
		BaseURL:   apiURL,
		Token:     token,
		Timeout:   cfg.Timeout,
		UserAgent: commands.UserAgent(),
		Logger:    cfg.Logger,
	}), nil
}

type harness struct {
	dir     string
	secrets *session.MemorySecrets
	factory cli.ServiceFactory
}

func newHarness(t *testing.T, factory cli.ServiceFactory) *harness {
	t.Helper()
	return &harness{dir: t.TempDir(), secrets: session.NewMemorySecrets(), factory: factory}
}

// run dispatches args with --config pointing at the harness dir. answers
// feed any prompts.
func (h *harness) run(args []string, answers ...string) (stdout, stderr string, code int) {
	d := cli.NewDispatcher(commands.DefaultRegistry, h.factory,
		cli.WithSecrets(func(*config.Config) session.SecretStore { return h.secrets }),
		cli.WithPrompter(&prompt.Static{Values: answers}),
	)
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		args = append(append([]string{}, args...), "--config", h.dir)
	}

	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func (h *harness) store() *session.Store {
	return session.NewStore(filepath.Join(h.dir, config.ProfilesFile), h.secrets)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	h := newHarness(t, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := h.run([]string{"unknowncmd"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_UnknownSubcommand(t *testing.T) {
	h := newHarness(t, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := h.run([]string{"tasks", "frobnicate"})
	if code != exitcode.UserError || stderr != "error: unknown command: tasks frobnicate\n" {
		t.Errorf("got %d %q", code, stderr)
	}

	_, stderr, code = h.run([]string{"tasks"})
	if code != exitcode.UserError || !strings.HasPrefix(stderr, "error: missing subcommand for tasks") {
		t.Errorf("got %d %q", code, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	h := newHarness(t, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := h.run([]string{"--quiet"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsPrintsHelp(t *testing.T) {
	h := newHarness(t, testFactory(testutil.NewFakeService(), nil))

	stdout, _, code := h.run(nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != commands.HelpText {
		t.Errorf("expected help text, got %q", stdout)
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	h := newHarness(t, testFactory(testutil.NewFakeService(), nil))

	stdout, _, code := h.run([]string{"version"})

	if code != exitcode.Success || stdout != "taskman 0.1.0\n" {
		t.Errorf("got %d %q", code, stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	h := newHarness(t, testFactory(testutil.NewFakeService(), nil))

	_, stderr, code := h.run([]string{"tasks", "list", "--bogus"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown flag: -bogus\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	h := newHarness(t, testFactory(testutil.NewFakeService(), nil))
	d := cli.NewDispatcher(commands.DefaultRegistry, h.factory)

	var outBuf, errBuf bytes.Buffer
	code := d.Run(context.Background(), []string{"tasks", "list", "--config", h.dir, "--status"}, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errBuf.String() != "error: flag needs an argument: -status\n" {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()
	var calls []factoryCall
	h := newHarness(t, testFactory(svc, &calls))

	_, stderr, code := h.run([]string{"tasks", "list"})

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: taskman auth login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(calls) != 0 || len(svc.Calls()) != 0 {
		t.Errorf("expected no backend use, got factory %v, calls %v", calls, svc.Calls())
	}
}

func TestDispatcher_UnknownProfile(t *testing.T) {
	h := newHarness(t, testFactory(testutil.NewFakeService(), nil))
	if err := h.store().Save("home", session.Profile{UserID: 1, Token: "t"}); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := h.run([]string{"tasks", "list", "--profile", "work"})

	if code != exitcode.UserError || stderr != "error: profile not found: work\n" {
		t.Errorf("got %d %q", code, stderr)
	}
}

func TestDispatcher_PassesSavedSession(t *testing.T) {
	svc := testutil.NewFakeService()
	var calls []factoryCall
	h := newHarness(t, testFactory(svc, &calls))
	if err := h.store().Save("default", session.Profile{APIURL: "http://saved.test", UserID: 1, Token: "tok"}); err != nil {
		t.Fatal(err)
	}

	_, _, code := h.run([]string{"tasks", "list"})
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if len(calls) != 1 || calls[0] != (factoryCall{apiURL: "http://saved.test", token: "tok"}) {
		t.Errorf("unexpected factory calls %+v", calls)
	}

	calls = nil
	h.run([]string{"tasks", "list", "--api-url", "http://override.test/"})
	if len(calls) != 1 || calls[0].apiURL != "http://override.test" {
		t.Errorf("expected --api-url override, got %+v", calls)
	}
}

func TestDispatcher_InterleavedFlags(t *testing.T) {
	svc := testutil.NewFakeService()
	h := newHarness(t, testFactory(svc, nil))
	if err := h.store().Save("default", session.Profile{UserID: 1, Token: "tok"}); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := h.run([]string{"tasks", "create", "Buy", "--due-date", "2024-06-01", "milk", "--category-id", "2", "--quiet"})

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (stderr %q)", code, stderr)
	}
	if stdout != "" {
		t.Errorf("expected quiet output, got %q", stdout)
	}
	if in := svc.LastTaskInput; in.Title != "Buy milk" || in.CategoryID != 2 || in.DueDate != "2024-06-01" {
		t.Errorf("unexpected input %+v", in)
	}
}

func TestDispatcher_DoubleDashEndsFlags(t *testing.T) {
	svc := testutil.NewFakeService()
	h := newHarness(t, testFactory(svc, nil))
	if err := h.store().Save("default", session.Profile{UserID: 1, Token: "tok"}); err != nil {
		t.Fatal(err)
	}

	d := cli.NewDispatcher(commands.DefaultRegistry, h.factory,
		cli.WithSecrets(func(*config.Config) session.SecretStore { return h.secrets }))
	var outBuf, errBuf bytes.Buffer
	code := d.Run(context.Background(),
		[]string{"tasks", "create", "--config", h.dir, "--category-id", "1", "--due", "2024-06-01", "--", "--not-a-flag"},
		&outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (stderr %q)", code, errBuf.String())
	}
	if svc.LastTaskInput.Title != "--not-a-flag" {
		t.Errorf("unexpected title %q", svc.LastTaskInput.Title)
	}
}

func TestDispatcher_InvalidSettings(t *testing.T) {
	h := newHarness(t, testFactory(testutil.NewFakeService(), nil))
	if err := os.WriteFile(filepath.Join(h.dir, "settings.yaml"), []byte("token_store: vault\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := h.run([]string{"profiles", "list"})

	if code != exitcode.UserError || !strings.HasPrefix(stderr, "error: invalid token_store") {
		t.Errorf("got %d %q", code, stderr)
	}
}

// End-to-end tests against an HTTP server.

func TestEndToEnd_LoginThenMe(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	uid := fake.AddUser("Ada Lovelace", "ada@example.com", "s3cret")
	h := newHarness(t, apiFactory)

	stdout, stderr, code := h.run([]string{"auth", "login", "--api-url", fake.URL(), "--email", "ada@example.com"}, "s3cret")
	if code != exitcode.Success {
		t.Fatalf("login: %d (stderr %q)", code, stderr)
	}
	if stdout != "logged in as ada@example.com (profile default)\n" {
		t.Errorf("unexpected login output %q", stdout)
	}

	p, err := h.store().Load("")
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.UserID != uid || p.APIURL != fake.URL() {
		t.Errorf("unexpected profile %+v", p)
	}

	// No --api-url: the saved endpoint is used.
	stdout, stderr, code = h.run([]string{"auth", "me"})
	if code != exitcode.Success {
		t.Fatalf("me: %d (stderr %q)", code, stderr)
	}
	for _, want := range []string{"Ada Lovelace", "ada@example.com", "User ID:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("me output should contain %q, got:\n%s", want, stdout)
		}
	}

	reqs := fake.Requests()
	if len(reqs) != 2 || reqs[0] != "POST /login" || !strings.HasPrefix(reqs[1], "GET /user/") {
		t.Errorf("unexpected requests %v", reqs)
	}
}

func TestEndToEnd_LoginWithoutUserSavesNothing(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.SetLoginResponse(http.StatusOK, `{"token":"abc","user":null}`)
	h := newHarness(t, apiFactory)

	_, stderr, code := h.run([]string{"auth", "login", "--api-url", fake.URL()}, "ada@example.com", "pw")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: login failed: no user returned\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(h.dir, config.ProfilesFile)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no profiles file, stat err = %v", err)
	}
}

func TestEndToEnd_InvalidCredentials(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddUser("Ada", "ada@example.com", "right")
	h := newHarness(t, apiFactory)

	_, stderr, code := h.run([]string{"auth", "login", "--api-url", fake.URL()}, "ada@example.com", "wrong")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: login failed: authentication failed: Invalid credentials\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestEndToEnd_CreateThenShow(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	uid := fake.AddUser("Ada", "ada@example.com", "pw")
	h := newHarness(t, apiFactory)
	if err := h.store().Save("default", session.Profile{APIURL: fake.URL(), UserID: uid, Token: fake.Token(uid)}); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := h.run([]string{"tasks", "create",
		"--title", "Ship release", "--due-date", "2024-06-01", "--priority", "HIGH", "--category-id", "3"})
	if code != exitcode.Success {
		t.Fatalf("create: %d (stderr %q)", code, stderr)
	}
	if !strings.Contains(stdout, "ID:          2\n") {
		t.Fatalf("expected task 2, got:\n%s", stdout)
	}

	stdout, stderr, code = h.run([]string{"tasks", "show", "2"})
	if code != exitcode.Success {
		t.Fatalf("show: %d (stderr %q)", code, stderr)
	}
	for _, want := range []string{
		"Title:       Ship release\n",
		"Status:      pending\n",
		"Priority:    HIGH\n",
		"Due date:    2024-06-01\n",
		"Completed:   no\n",
		"Category:    3\n",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("show output should contain %q, got:\n%s", want, stdout)
		}
	}

	stdout, _, code = h.run([]string{"tasks", "complete", "2"})
	if code != exitcode.Success || !strings.HasPrefix(stdout, "task 2 completed\n") {
		t.Errorf("complete: %d %q", code, stdout)
	}

	stdout, _, code = h.run([]string{"tasks", "delete", "2"})
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("delete: %d %q", code, stdout)
	}

	_, stderr, code = h.run([]string{"tasks", "show", "2"})
	if code != exitcode.BackendError || stderr != "error: not found: Task not found\n" {
		t.Errorf("show deleted: %d %q", code, stderr)
	}
}

func TestEndToEnd_NotLoggedInSendsNothing(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	h := newHarness(t, apiFactory)

	_, stderr, code := h.run([]string{"tasks", "list", "--api-url", fake.URL()})

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: taskman auth login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if reqs := fake.Requests(); len(reqs) != 0 {
		t.Errorf("expected no requests, got %v", reqs)
	}
}

func TestEndToEnd_ExpiredSession(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	uid := fake.AddUser("Ada", "ada@example.com", "pw")
	h := newHarness(t, apiFactory)
	if err := h.store().Save("default", session.Profile{APIURL: fake.URL(), UserID: uid, Token: fake.ExpiredToken(uid)}); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := h.run([]string{"tasks", "list"})

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: taskman auth login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if reqs := fake.Requests(); len(reqs) != 0 {
		t.Errorf("expected no requests, got %v", reqs)
	}
}

func TestEndToEnd_ClockPastExpiry(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	uid := fake.AddUser("Ada", "ada@example.com", "pw")
	h := newHarness(t, apiFactory)
	if err := h.store().Save("default", session.Profile{APIURL: fake.URL(), UserID: uid, Token: fake.Token(uid)}); err != nil {
		t.Fatal(err)
	}

	d := cli.NewDispatcher(commands.DefaultRegistry, apiFactory,
		cli.WithSecrets(func(*config.Config) session.SecretStore { return h.secrets }),
		cli.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) }),
	)
	var outBuf, errBuf bytes.Buffer
	code := d.Run(context.Background(), []string{"auth", "me", "--config", h.dir}, &outBuf, &errBuf)

	if code != exitcode.AuthError || errBuf.String() != "error: session expired (run: taskman auth login)\n" {
		t.Errorf("got %d %q", code, errBuf.String())
	}
	if reqs := fake.Requests(); len(reqs) != 0 {
		t.Errorf("expected no requests, got %v", reqs)
	}
}

func TestEndToEnd_RegisterThenLogin(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	h := newHarness(t, apiFactory)

	stdout, stderr, code := h.run([]string{"auth", "register", "--api-url", fake.URL(),
		"--fullname", "Grace Hopper", "--email", "grace@example.com"}, "pw", "pw")
	if code != exitcode.Success {
		t.Fatalf("register: %d (stderr %q)", code, stderr)
	}
	if !strings.HasPrefix(stdout, "registered grace@example.com (id 1)\n") {
		t.Errorf("unexpected register output %q", stdout)
	}

	_, stderr, code = h.run([]string{"auth", "register", "--api-url", fake.URL(),
		"--fullname", "Grace Hopper", "--email", "grace@example.com"}, "pw", "pw")
	if code != exitcode.BackendError || stderr != "error: registration failed: User already exists\n" {
		t.Errorf("duplicate register: %d %q", code, stderr)
	}

	_, stderr, code = h.run([]string{"auth", "login", "--api-url", fake.URL(), "--profile", "work"}, "grace@example.com", "pw")
	if code != exitcode.Success {
		t.Fatalf("login: %d (stderr %q)", code, stderr)
	}
	if cur, _ := h.store().Current(); cur != "work" {
		t.Errorf("expected current profile work, got %q", cur)
	}
}

func TestEndToEnd_CategoryLifecycle(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	uid := fake.AddUser("Ada", "ada@example.com", "pw")
	h := newHarness(t, apiFactory)
	if err := h.store().Save("default", session.Profile{APIURL: fake.URL(), UserID: uid, Token: fake.Token(uid)}); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := h.run([]string{"categories", "create", "--name", "Work", "--color", "#00f"})
	if code != exitcode.Success {
		t.Fatalf("create: %d (stderr %q)", code, stderr)
	}
	if !strings.Contains(stdout, "Name:        Work\n") {
		t.Errorf("unexpected create output:\n%s", stdout)
	}

	stdout, _, _ = h.run([]string{"categories", "ls"})
	if !strings.Contains(stdout, "Work") {
		t.Errorf("list should show Work, got:\n%s", stdout)
	}

	_, _, code = h.run([]string{"tasks", "add", "--category", "2", "--due", "2024-06-01", "Plan", "sprint", "--quiet"})
	if code != exitcode.Success {
		t.Fatalf("task add: %d", code)
	}

	_, stderr, code = h.run([]string{"categories", "rm", "2"})
	if code != exitcode.UserError || stderr != "error: category not empty (use --force)\n" {
		t.Errorf("rm non-empty: %d %q", code, stderr)
	}

	stdout, _, code = h.run([]string{"categories", "rm", "--force", "2"})
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("forced rm: %d %q", code, stdout)
	}
}

func TestEndToEnd_LogoutThenCommandFails(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	uid := fake.AddUser("Ada", "ada@example.com", "pw")
	h := newHarness(t, apiFactory)
	if err := h.store().Save("default", session.Profile{APIURL: fake.URL(), UserID: uid, Token: fake.Token(uid)}); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := h.run([]string{"auth", "logout"})
	if code != exitcode.Success || stdout != "ok\n" {
		t.Fatalf("logout: %d %q", code, stdout)
	}
	if _, err := h.secrets.Get("default"); !errors.Is(err, session.ErrSecretNotFound) {
		t.Errorf("expected token removed, got %v", err)
	}

	_, stderr, code := h.run([]string{"tasks", "list"})
	if code != exitcode.AuthError || stderr != "error: not logged in (run: taskman auth login)\n" {
		t.Errorf("after logout: %d %q", code, stderr)
	}
	if reqs := fake.Requests(); len(reqs) != 0 {
		t.Errorf("expected no requests, got %v", reqs)
	}
}
