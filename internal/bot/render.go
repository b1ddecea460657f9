package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergei-li-tech/tgops/internal/operr"
	"github.com/sergei-li-tech/tgops/pkg/apps"
	"github.com/sergei-li-tech/tgops/pkg/flux"
)

const startText = "Hello! I am a Kubernetes-aware ops bot. Use /help to see available commands."

const helpText = `Available commands:
/checkreleases - List unhealthy Flux HelmReleases and manage them
/apps - List apps status
/logs [app] - Show log links for applications (optional: filter by app name)`

const allHealthyText = "All HelmReleases are healthy! 🎉"

const unauthorizedText = "⛔️ Sorry, you are not authorized to use this bot."

// renderRelease formats one unhealthy release as a Markdown block.
func renderRelease(rel flux.UnhealthyRelease) string {
	var emoji, status string
	switch {
	case rel.Reconciling:
		emoji, status = "♻️", "RECONCILING"
	case rel.Stalled:
		emoji, status = "⛔️", "STALLED"
	default:
		emoji, status = "🔄", "NOT READY"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s/%s*\n", emoji, rel.Namespace, rel.Name)
	fmt.Fprintf(&b, "├─ Status: %s\n", status)
	fmt.Fprintf(&b, "├─ Last Transition: %s\n", rel.LastTransition)
	fmt.Fprintf(&b, "└─ Error: `%s`", rel.Error)
	return b.String()
}

// renderApps formats the labeled-pod report, one block per pod.
func renderApps(pods []apps.PodApp) string {
	if len(pods) == 0 {
		return "No pods found with the app label"
	}

	var b strings.Builder
	for _, pod := range pods {
		var emoji string
		switch pod.Phase {
		case "Running":
			emoji = "🟢"
		case "Failed":
			emoji = "🔴"
		default:
			emoji = "🟡"
		}
		fmt.Fprintf(&b, "%s %s/%s\n", emoji, pod.Namespace, pod.Name)
		fmt.Fprintf(&b, "   Status: %s\n", pod.Phase)
		fmt.Fprintf(&b, "   Image tag: %s\n", pod.ImageTag)
		fmt.Fprintf(&b, "   Version: %s\n", pod.Version)
		fmt.Fprintf(&b, "   Age: %s\n\n", pod.Age)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderLogLinks formats the configured log links, optionally filtered by
// a case-insensitive app-name substring. Links are listed in name order so
// repeated calls render identically.
func renderLogLinks(links map[string]string, filter string) string {
	if len(links) == 0 {
		return "No application log links are configured. Set the TGOPS_LOGLINKS environment variable."
	}

	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	matched := false
	b.WriteString("📋 Application Log Links:\n\n")
	for _, name := range names {
		if filter != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(filter)) {
			continue
		}
		matched = true
		fmt.Fprintf(&b, "📊 [%s](%s)\n\n", name, links[name])
	}

	if !matched {
		return fmt.Sprintf("No log links found for application matching '%s'", filter)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderReconcileOutcome maps the driver's result to the final text of the
// progress message.
func renderReconcileOutcome(namespace, name string, err error) string {
	switch operr.KindOf(err) {
	case "":
		if err != nil {
			return fmt.Sprintf("❌ Error reconciling %s/%s: %v", namespace, name, err)
		}
		return fmt.Sprintf("✅ Started reconciliation for %s/%s\nUse /checkreleases to see current status", namespace, name)
	case operr.AlreadyReconciling:
		return fmt.Sprintf("♻️ Release %s/%s is already reconciling, no action taken", namespace, name)
	case operr.SuspendFailed:
		return fmt.Sprintf("❌ Failed to suspend release %s/%s", namespace, name)
	case operr.UnsuspendFailed:
		return fmt.Sprintf("❌ Failed to unsuspend release %s/%s\n⚠️ The release is left SUSPENDED and needs manual intervention", namespace, name)
	case operr.Conflict:
		return fmt.Sprintf("❌ Release %s/%s was modified concurrently, not retried. Check and try again", namespace, name)
	default:
		return fmt.Sprintf("❌ Error reconciling %s/%s: %v", namespace, name, err)
	}
}
