package bot

// GitHubEvents is the default event registry: the webhook event names GitHub
// sends in the X-GitHub-Event header.
var GitHubEvents = []string{
	"check_run",
	"check_suite",
	"commit_comment",
	"create",
	"delete",
	"deployment",
	"deployment_status",
	"fork",
	"gollum",
	"issue_comment",
	"issues",
	"label",
	"member",
	"membership",
	"milestone",
	"organization",
	"page_build",
	"ping",
	"public",
	"pull_request",
	"pull_request_review",
	"pull_request_review_comment",
	"push",
	"release",
	"repository",
	"star",
	"status",
	"team",
	"team_add",
	"watch",
	"workflow_run",
}
