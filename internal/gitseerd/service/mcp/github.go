package mcp

import (
	"context"
	"strings"
	"sync"

	"github.com/morgatz/gitseer/pkg/logger"
)

// GitHub MCP servers disagree on tool naming across versions, so every
// logical operation maps to a preference-ordered list of candidate names.
// The first candidate the server actually advertises wins.
var githubToolCandidates = map[string][]string{
	"repository":    {"list_repository", "get_repository", "github_get_repository", "get_repo", "repository", "repo"},
	"commits":       {"list_commits", "get_commits", "github_get_commits", "commits"},
	"issues":        {"list_issues", "get_issues", "github_get_issues", "issues"},
	"pull_requests": {"list_pull_requests", "get_pull_requests", "github_get_pull_requests", "get_pulls", "pull_requests", "pulls"},
}

const githubPerPage = 30

// fetchRepoData aggregates repository metadata, commit history, issues and
// pull requests from a GitHub MCP server into a single payload. Missing
// tools and per-call failures degrade to nil fields; the aggregation only
// fails when the server is unreachable.
func fetchRepoData(ctx context.Context, srv toolCaller, owner, repo string) (map[string]interface{}, error) {
	toolMap := discoverTools(srv, githubToolCandidates)
	logger.DebugX("mcp", "github tool map: %v", toolMap)

	base := map[string]interface{}{"owner": owner, "repo": repo}

	var repository interface{}
	if name, ok := toolMap["repository"]; ok {
		if result, err := srv.CallTool(ctx, name, base); err != nil {
			logger.Debug("[MCP] repository tool %s failed: %v", name, err)
		} else if err := resultError(result); err != nil {
			logger.Debug("[MCP] repository tool %s errored: %v", name, err)
		} else {
			repository = parseContent(result)
		}
	}

	listArgs := func(extra map[string]interface{}) map[string]interface{} {
		args := map[string]interface{}{"owner": owner, "repo": repo, "per_page": githubPerPage}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	// The three listings are independent; fetch them in parallel.
	var wg sync.WaitGroup
	var commits, issues, prs interface{}

	wg.Add(3)
	go func() {
		defer wg.Done()
		commits = callListing(ctx, srv, toolMap["commits"], listArgs(nil))
	}()
	go func() {
		defer wg.Done()
		issues = callListing(ctx, srv, toolMap["issues"], listArgs(map[string]interface{}{"state": "all"}))
	}()
	go func() {
		defer wg.Done()
		prs = callPullRequests(ctx, srv, toolMap["pull_requests"], listArgs(map[string]interface{}{"state": "all"}))
	}()
	wg.Wait()

	return map[string]interface{}{
		"repository":   repository,
		"commits":      commits,
		"issues":       issues,
		"pullRequests": prs,
	}, nil
}

// discoverTools resolves each logical operation to the first advertised
// candidate name. Operations with no match fall back to the first
// candidate, so a server that cannot list tools still gets a sensible try.
func discoverTools(srv toolCaller, candidates map[string][]string) map[string]string {
	advertised := make(map[string]bool)
	for _, name := range srv.ToolNames() {
		advertised[name] = true
	}

	toolMap := make(map[string]string, len(candidates))
	for op, names := range candidates {
		toolMap[op] = names[0]
		for _, name := range names {
			if advertised[name] {
				toolMap[op] = name
				break
			}
		}
	}
	return toolMap
}

// callListing runs one listing tool, returning nil on any failure.
func callListing(ctx context.Context, srv toolCaller, name string, args map[string]interface{}) interface{} {
	if name == "" {
		return nil
	}
	result, err := srv.CallTool(ctx, name, args)
	if err != nil {
		if isAuthError(err) {
			logger.Error("[MCP] authentication failed for %s, check GITHUB_TOKEN or GITHUB_PERSONAL_ACCESS_TOKEN", name)
		} else {
			logger.Debug("[MCP] tool %s failed: %v", name, err)
		}
		return nil
	}
	if err := resultError(result); err != nil {
		logger.Debug("[MCP] tool %s errored: %v", name, err)
		return nil
	}
	return parseContent(result)
}

// callPullRequests lists pull requests with a state fallback: servers that
// validate PR payloads choke on state=all when a PR's head repo was deleted
// (fork removed), so retry with open-only and then closed-only listings.
func callPullRequests(ctx context.Context, srv toolCaller, name string, args map[string]interface{}) interface{} {
	if name == "" {
		return nil
	}
	result, err := srv.CallTool(ctx, name, args)
	if err == nil {
		if resErr := resultError(result); resErr == nil {
			return parseContent(result)
		}
		err = resultError(result)
	}
	if isAuthError(err) {
		logger.Error("[MCP] authentication failed for %s, check GITHUB_TOKEN or GITHUB_PERSONAL_ACCESS_TOKEN", name)
		return nil
	}
	if !isValidationError(err) {
		logger.Debug("[MCP] tool %s failed: %v", name, err)
		return nil
	}

	logger.Debug("[MCP] pull request listing validation error (likely null head.repo): %v", err)
	for _, state := range []string{"open", "closed"} {
		retry := make(map[string]interface{}, len(args))
		for k, v := range args {
			retry[k] = v
		}
		retry["state"] = state
		result, err := srv.CallTool(ctx, name, retry)
		if err != nil || resultError(result) != nil {
			continue
		}
		logger.Debug("[MCP] fetched %s pull requests after state fallback", state)
		return parseContent(result)
	}
	return nil
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Authentication Failed") ||
		strings.Contains(msg, "Bad credentials") ||
		strings.Contains(msg, "401")
}

func isValidationError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid input") ||
		strings.Contains(msg, "invalid_type") ||
		strings.Contains(msg, "null")
}
