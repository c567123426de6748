package bird

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeRunner returns canned process results without spawning anything.
type fakeRunner struct {
	stdout   string
	stderr   string
	exitCode int
	err      error

	lastName string
	lastArgs []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (string, string, int, error) {
	r.lastName = name
	r.lastArgs = args
	return r.stdout, r.stderr, r.exitCode, r.err
}

func TestCheckAuth_Success(t *testing.T) {
	runner := &fakeRunner{stdout: "@someuser"}
	client := NewClient("/usr/local/bin/bird", runner)

	if !client.CheckAuth(context.Background()) {
		t.Error("Expected CheckAuth to succeed on exit 0")
	}
	if runner.lastName != "/usr/local/bin/bird" {
		t.Errorf("Expected configured binary path, got %s", runner.lastName)
	}
	if len(runner.lastArgs) != 1 || runner.lastArgs[0] != "whoami" {
		t.Errorf("Expected whoami args, got %v", runner.lastArgs)
	}
}

func TestCheckAuth_FailsClosed(t *testing.T) {
	cases := []struct {
		name   string
		runner *fakeRunner
	}{
		{"non-zero exit", &fakeRunner{exitCode: 1, stderr: "not logged in"}},
		{"spawn failure", &fakeRunner{exitCode: -1, err: errors.New("no such file")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewClient("bird", tc.runner)
			if client.CheckAuth(context.Background()) {
				t.Error("Expected CheckAuth to fail")
			}
		})
	}
}

func TestFetchBookmarks_Success(t *testing.T) {
	runner := &fakeRunner{stdout: `{
		"tweets": [
			{"id": "1893574113297879544", "text": "hello", "author": {"username": "alice", "name": "Alice"}},
			{"id": "1893574113297879545", "text": "world", "author": {"username": "bob", "name": "Bob"}}
		],
		"nextCursor": "abc123"
	}`}
	client := NewClient("bird", runner)

	response, err := client.FetchBookmarks(context.Background())
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if len(response.Tweets) != 2 {
		t.Errorf("Expected 2 tweets, got %d", len(response.Tweets))
	}
	if response.Tweets[0].ID != "1893574113297879544" {
		t.Errorf("Unexpected first tweet id: %s", response.Tweets[0].ID)
	}
	if response.NextCursor != "abc123" {
		t.Errorf("Expected cursor abc123, got %s", response.NextCursor)
	}
	if len(runner.lastArgs) != 3 || runner.lastArgs[0] != "bookmarks" {
		t.Errorf("Expected bookmarks --all --json args, got %v", runner.lastArgs)
	}
}

func TestFetchBookmarks_AuthErrorOnCookieStderr(t *testing.T) {
	runner := &fakeRunner{exitCode: 1, stderr: "Error: Safari cookie jar is empty"}
	client := NewClient("bird", runner)

	_, err := client.FetchBookmarks(context.Background())
	if err == nil {
		t.Fatal("Expected an error")
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %T: %v", err, err)
	}
	if !strings.Contains(authErr.Message, "log in to X in Safari") {
		t.Errorf("Expected user-actionable message, got %q", authErr.Message)
	}
}

func TestFetchBookmarks_AuthErrorOnMissingCredentials(t *testing.T) {
	runner := &fakeRunner{exitCode: 2, stderr: "Missing required credentials for request"}
	client := NewClient("bird", runner)

	_, err := client.FetchBookmarks(context.Background())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %T: %v", err, err)
	}
}

func TestFetchBookmarks_ProcessError(t *testing.T) {
	runner := &fakeRunner{exitCode: 3, stderr: "rate limited, try again later\n"}
	client := NewClient("bird", runner)

	_, err := client.FetchBookmarks(context.Background())

	var procErr *ProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("Expected ProcessError, got %T: %v", err, err)
	}
	if procErr.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", procErr.ExitCode)
	}
	if procErr.Stderr != "rate limited, try again later" {
		t.Errorf("Expected trimmed stderr, got %q", procErr.Stderr)
	}
}

func TestFetchBookmarks_SpawnFailure(t *testing.T) {
	runner := &fakeRunner{exitCode: -1, err: errors.New("fork/exec: no such file")}
	client := NewClient("bird", runner)

	_, err := client.FetchBookmarks(context.Background())
	if err == nil {
		t.Fatal("Expected an error")
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		t.Error("Spawn failure must not read as an auth error")
	}
}

func TestFetchBookmarks_ParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		stdout string
	}{
		{"not JSON", "garbled output"},
		{"missing tweets field", `{"nextCursor": "abc"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewClient("bird", &fakeRunner{stdout: tc.stdout})

			_, err := client.FetchBookmarks(context.Background())

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Expected ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestFetchBookmarks_EmptyTweetsIsValid(t *testing.T) {
	client := NewClient("bird", &fakeRunner{stdout: `{"tweets": []}`})

	response, err := client.FetchBookmarks(context.Background())
	if err != nil {
		t.Fatalf("Expected empty tweets list to be valid, got error: %v", err)
	}
	if len(response.Tweets) != 0 {
		t.Errorf("Expected 0 tweets, got %d", len(response.Tweets))
	}
}

func TestFetchThread_BareList(t *testing.T) {
	runner := &fakeRunner{stdout: `[
		{"id": "1", "text": "root", "conversationId": "1"},
		{"id": "2", "text": "reply", "conversationId": "1", "inReplyToStatusId": "1"}
	]`}
	client := NewClient("bird", runner)

	tweets, err := client.FetchThread(context.Background(), "1")
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if len(tweets) != 2 {
		t.Errorf("Expected 2 tweets, got %d", len(tweets))
	}
	if len(runner.lastArgs) != 3 || runner.lastArgs[1] != "1" {
		t.Errorf("Expected thread <id> --json args, got %v", runner.lastArgs)
	}
}

func TestFetchThread_WrappedList(t *testing.T) {
	client := NewClient("bird", &fakeRunner{stdout: `{"tweets": [{"id": "1", "text": "root"}]}`})

	tweets, err := client.FetchThread(context.Background(), "1")
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if len(tweets) != 1 || tweets[0].ID != "1" {
		t.Errorf("Unexpected tweets: %+v", tweets)
	}
}

func TestFetchThread_InvalidShape(t *testing.T) {
	client := NewClient("bird", &fakeRunner{stdout: `{"items": []}`})

	_, err := client.FetchThread(context.Background(), "1")

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %T: %v", err, err)
	}
}

func TestTweetUnmarshal_QuotedTweet(t *testing.T) {
	client := NewClient("bird", &fakeRunner{stdout: `{"tweets": [{
		"id": "10",
		"text": "check this out",
		"quotedTweet": {"id": "20", "text": "original take", "author": {"username": "carol", "name": "Carol"}}
	}]}`})

	response, err := client.FetchBookmarks(context.Background())
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	quoted := response.Tweets[0].QuotedTweet
	if quoted == nil {
		t.Fatal("Expected quoted tweet to be populated")
	}
	if quoted.ID != "20" || quoted.Author.Username != "carol" {
		t.Errorf("Unexpected quoted tweet: %+v", quoted)
	}
}
