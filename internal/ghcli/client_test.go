package ghcli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context, args ...string) (string, error)

func (f runnerFunc) Run(ctx context.Context, args ...string) (string, error) {
	return f(ctx, args...)
}

func TestSearchRepos(t *testing.T) {
	t.Parallel()

	var got []string
	client := NewClient(runnerFunc(func(ctx context.Context, args ...string) (string, error) {
		got = args
		return `[{"name":"tiny","fullName":"me/tiny"},{"name":"big","fullName":"me/big"}]`, nil
	}))

	repos, err := client.SearchRepos(context.Background(), "@me", 50)
	require.NoError(t, err)
	require.Equal(t, []Repo{
		{Name: "tiny", FullName: "me/tiny"},
		{Name: "big", FullName: "me/big"},
	}, repos)

	require.Contains(t, got, "--owner=@me")
	require.Contains(t, got, "50")
	require.Contains(t, got, "name,fullName")
}

func TestSearchReposPropagatesErrors(t *testing.T) {
	t.Parallel()

	client := NewClient(runnerFunc(func(ctx context.Context, args ...string) (string, error) {
		return "", errors.New("gh: not logged in")
	}))

	_, err := client.SearchRepos(context.Background(), "@me", 10)
	require.ErrorContains(t, err, "search repos")

	client = NewClient(runnerFunc(func(ctx context.Context, args ...string) (string, error) {
		return "not json", nil
	}))
	_, err = client.SearchRepos(context.Background(), "@me", 10)
	require.ErrorContains(t, err, "decode repo list")
}

func TestAuthStatus(t *testing.T) {
	t.Parallel()

	client := NewClient(runnerFunc(func(ctx context.Context, args ...string) (string, error) {
		require.Equal(t, []string{"auth", "status"}, args)
		return "Logged in", nil
	}))
	require.NoError(t, client.AuthStatus(context.Background()))

	client = NewClient(runnerFunc(func(ctx context.Context, args ...string) (string, error) {
		return "", errors.New("exit status 1")
	}))
	require.Error(t, client.AuthStatus(context.Background()))
}
