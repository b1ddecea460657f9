package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sergei-li-tech/tgops/pkg/action"
	"github.com/sergei-li-tech/tgops/pkg/apps"
	"github.com/sergei-li-tech/tgops/pkg/flux"
)

// ReleaseService is the flux core surface the bot consumes.
type ReleaseService interface {
	ListUnhealthy(ctx context.Context) ([]flux.UnhealthyRelease, error)
	GetHelmRelease(ctx context.Context, namespace, name string) (flux.Release, error)
	Reconcile(ctx context.Context, namespace, name string, alreadyReconciling bool, progress flux.ProgressFunc) (flux.Outcome, error)
}

// AppReporter is the pod reporter surface the bot consumes.
type AppReporter interface {
	ListApps(ctx context.Context) ([]apps.PodApp, error)
}

func (b *Bot) dispatchCommand(ctx context.Context, req *Request) error {
	switch req.Command {
	case "start":
		b.reply(req.ChatID, startText)
		return nil
	case "help":
		b.reply(req.ChatID, helpText)
		return nil
	case "apps":
		return b.appsCommand(ctx, req)
	case "logs":
		b.replyMarkdown(req.ChatID, renderLogLinks(b.logLinks, req.Args))
		return nil
	case "checkreleases":
		return b.checkReleasesCommand(ctx, req)
	default:
		b.reply(req.ChatID, "Unknown command. Use /help to see available commands.")
		return nil
	}
}

func (b *Bot) appsCommand(ctx context.Context, req *Request) error {
	pods, err := b.reporter.ListApps(ctx)
	if err != nil {
		b.reply(req.ChatID, fmt.Sprintf("Error searching pods: %v", err))
		return err
	}
	b.reply(req.ChatID, renderApps(pods))
	return nil
}

func (b *Bot) checkReleasesCommand(ctx context.Context, req *Request) error {
	unhealthy, err := b.releases.ListUnhealthy(ctx)
	if err != nil {
		b.reply(req.ChatID, fmt.Sprintf("Error checking HelmReleases: %v", err))
		return err
	}

	if len(unhealthy) == 0 {
		b.reply(req.ChatID, allHealthyText)
		return nil
	}

	for _, rel := range unhealthy {
		b.replyMarkdown(req.ChatID, renderRelease(rel))

		// A toggle racing an in-flight reconciliation is never offered.
		if rel.Reconciling {
			continue
		}
		token, err := action.NewToggle(rel.Namespace, rel.Name).Encode()
		if err != nil {
			b.log.Error().Err(err).Str("release", rel.Namespace+"/"+rel.Name).Msg("skipping action button")
			continue
		}
		msg := tgbotapi.NewMessage(req.ChatID,
			fmt.Sprintf("Actions for *%s/%s*:", rel.Namespace, rel.Name))
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Reconcile", token),
			),
		)
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error().Err(err).Msg("send action keyboard failed")
		}
	}
	return nil
}

func (b *Bot) dispatchCallback(ctx context.Context, req *Request) error {
	b.answerCallback(req.CallbackID, "")

	act, err := action.Decode(req.Data)
	if err != nil {
		b.edit(req.ChatID, req.MessageID, "❌ Unrecognized action, please run the command again")
		return err
	}

	switch act.Kind {
	case action.Toggle:
		return b.toggleCallback(ctx, req, act)
	case action.Logs:
		b.logsCallback(req, act)
		return nil
	}
	return nil
}

// toggleCallback runs the two-phase reconcile toggle, editing the action
// message in place so the operator sees each phase.
func (b *Bot) toggleCallback(ctx context.Context, req *Request, act action.Action) error {
	// Re-fetch and re-classify before toggling: the listing this button
	// came from may be stale and the controller may already be converging.
	rel, err := b.releases.GetHelmRelease(ctx, act.Namespace, act.Name)
	if err != nil {
		b.edit(req.ChatID, req.MessageID, fmt.Sprintf("❌ Error reading release %s/%s: %v", act.Namespace, act.Name, err))
		return err
	}
	verdict := flux.Classify(rel.Conditions)

	_, err = b.releases.Reconcile(ctx, act.Namespace, act.Name, verdict.Reconciling, func(step flux.Step) {
		switch step {
		case flux.StepSuspending:
			b.edit(req.ChatID, req.MessageID, fmt.Sprintf("Suspending release %s/%s...", act.Namespace, act.Name))
		case flux.StepUnsuspending:
			b.edit(req.ChatID, req.MessageID, fmt.Sprintf("Unsuspending release %s/%s...", act.Namespace, act.Name))
		}
	})

	b.edit(req.ChatID, req.MessageID, renderReconcileOutcome(act.Namespace, act.Name, err))
	return err
}

func (b *Bot) logsCallback(req *Request, act action.Action) {
	url, ok := b.logLinks[act.App]
	if !ok {
		b.edit(req.ChatID, req.MessageID, fmt.Sprintf("❌ No log link found for %s", act.App))
		return
	}
	edit := tgbotapi.NewEditMessageText(req.ChatID, req.MessageID,
		fmt.Sprintf("📊 *%s Logs*\n%s", act.App, url))
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.DisableWebPagePreview = true
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error().Err(err).Msg("edit failed")
	}
}
