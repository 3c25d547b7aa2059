// Package fanout turns domain events into per-recipient notifications and
// delivers them on every requested channel concurrently. Every outcome,
// failures included, ends up in the delivery log; nothing is returned as an
// error to the write path that raised the event.
package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rental-chat/contract"
	"rental-chat/domain"
	"rental-chat/domain/notification"
	"rental-chat/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Config struct {
	AttemptTimeout  time.Duration
	DispatchTimeout time.Duration
	DefaultLocale   string
}

type Engine struct {
	log           *slog.Logger
	chats         contract.ChatReader
	notifications contract.NotificationStore
	deliveries    contract.AttemptRecorder
	users         contract.UserDirectory
	enricher      Enricher
	resolver      TemplateResolver
	senders       map[notification.Channel]contract.Sender
	config        Config
	now           func() time.Time
}

func NewEngine(
	log *slog.Logger,
	chats contract.ChatReader,
	notifications contract.NotificationStore,
	deliveries contract.AttemptRecorder,
	users contract.UserDirectory,
	enricher Enricher,
	resolver TemplateResolver,
	config Config,
	senders ...contract.Sender,
) *Engine {
	bySender := make(map[notification.Channel]contract.Sender, len(senders))
	for _, s := range senders {
		bySender[s.Channel()] = s
	}
	return &Engine{
		log:           log,
		chats:         chats,
		notifications: notifications,
		deliveries:    deliveries,
		users:         users,
		enricher:      enricher,
		resolver:      resolver,
		senders:       bySender,
		config:        config,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// task is one (recipient, channel) delivery.
type task struct {
	notification notification.Notification
	channel      notification.Channel
	delivery     notification.Delivery
	try          int
	err          error
}

func (t task) key() string {
	return fmt.Sprintf("%s/%s", t.notification.ID, t.channel)
}

// Dispatch fans the event out and waits at most DispatchTimeout.
// Tasks still running at that point are reported pending and keep running;
// their final attempt is appended when they finish.
func (e *Engine) Dispatch(ctx context.Context, event notification.Event) notification.DispatchOutcome {
	outcome := notification.DispatchOutcome{EventID: event.ID}
	recipients := e.recipients(ctx, event)
	if len(recipients) == 0 {
		e.log.Debug("No recipient for event", "event_id", event.ID, "type", event.Type)
		return outcome
	}
	channels := event.Channels
	if len(channels) == 0 {
		channels = notification.AllChannels
	}
	variables := e.enricher.Enrich(ctx, event)

	var tasks []task
	for _, recipientID := range recipients {
		tasks = append(tasks, e.prepare(ctx, event, recipientID, channels, variables)...)
	}
	outcome.Results = e.run(ctx, tasks)
	e.log.Debug("Event dispatched",
		"event_id", event.ID,
		"recipients", len(recipients),
		"status", outcome.Status())
	return outcome
}

// Redeliver retries a single channel of an existing notification.
func (e *Engine) Redeliver(ctx context.Context, n notification.Notification, channel notification.Channel, try int) notification.ChannelResult {
	recipient, err := e.users.GetUser(ctx, n.RecipientID)
	if err != nil {
		recipient = domain.Participant{ID: n.RecipientID}
		err = fmt.Errorf("%w: %v", errors.ErrUnknownRecipient, err)
	}
	t := e.task(n, recipient, channel, n.Variables, n.Locale, try)
	if err != nil && t.err == nil {
		t.err = err
	}
	results := e.run(ctx, []task{t})
	return results[0]
}

func (e *Engine) recipients(ctx context.Context, event notification.Event) []string {
	recipients := event.Recipients
	if event.Type == notification.MessageReceived && event.ChatID != uuid.Nil {
		c, err := e.chats.Get(event.ChatID)
		if err != nil {
			e.log.Warn("Unable to resolve chat recipients", "chat_id", event.ChatID, "error", err)
		} else {
			recipients = c.Others(event.SenderID)
		}
	}
	return lo.Uniq(lo.Without(recipients, event.SenderID, ""))
}

// prepare saves one notification for the recipient and builds its channel tasks.
func (e *Engine) prepare(ctx context.Context, event notification.Event, recipientID string, channels []notification.Channel, variables map[string]string) []task {
	recipient, lookupErr := e.users.GetUser(ctx, recipientID)
	if lookupErr != nil {
		e.log.Warn("Recipient lookup failed", "recipient_id", recipientID, "error", lookupErr)
		recipient = domain.Participant{ID: recipientID}
	}
	vars := lo.Assign(variables, map[string]string{"recipient_name": displayName(recipient)})
	locale := e.locale(recipient, event, vars)

	n := notification.Notification{
		ID:          uuid.New(),
		EventID:     event.ID,
		RecipientID: recipientID,
		Type:        event.Type,
		Channels:    channels,
		Locale:      locale,
		Variables:   vars,
		CreatedAt:   e.now(),
	}
	n.Title, n.Body = e.summary(n, channels)
	if err := e.notifications.Save(n); err != nil {
		e.log.Warn("Unable to save notification", "notification_id", n.ID, "error", err)
	}

	tasks := make([]task, 0, len(channels))
	for _, channel := range channels {
		t := e.task(n, recipient, channel, vars, locale, 1)
		if lookupErr != nil && t.err == nil {
			t.err = fmt.Errorf("%w: %v", errors.ErrUnknownRecipient, lookupErr)
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func (e *Engine) task(n notification.Notification, recipient domain.Participant, channel notification.Channel, vars map[string]string, locale string, try int) task {
	t := task{notification: n, channel: channel, try: try}
	tpl, err := e.resolver.Resolve(n.Type, channel, locale)
	if err != nil {
		t.err = err
		return t
	}
	rendered, err := safeRender(tpl, vars)
	if err != nil {
		t.err = err
		return t
	}
	t.delivery = notification.Delivery{
		NotificationID: n.ID,
		Type:           n.Type,
		RecipientID:    recipient.ID,
		DisplayName:    recipient.DisplayName,
		Email:          recipient.Email,
		PushToken:      recipient.PushToken,
		Subject:        rendered.Subject,
		Body:           rendered.Body,
		Data:           lo.PickByKeys(vars, []string{"chat_id", "message_id"}),
		CreatedAt:      n.CreatedAt,
	}
	return t
}

// safeRender turns a panic inside substitution into a render error for this channel only.
func safeRender(tpl Template, vars map[string]string) (rendered Rendered, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrTemplateRender, r)
		}
	}()
	return RenderTemplate(tpl, vars), nil
}

// summary fills the notification title and body from the in_app rendering,
// or the first channel that renders.
func (e *Engine) summary(n notification.Notification, channels []notification.Channel) (string, string) {
	ordered := append([]notification.Channel{notification.InApp}, channels...)
	for _, channel := range ordered {
		tpl, err := e.resolver.Resolve(n.Type, channel, n.Locale)
		if err != nil {
			continue
		}
		if rendered, err := safeRender(tpl, n.Variables); err == nil {
			return rendered.Subject, rendered.Body
		}
	}
	return string(n.Type), ""
}

func (e *Engine) locale(recipient domain.Participant, event notification.Event, vars map[string]string) string {
	switch {
	case recipient.Locale != "":
		return recipient.Locale
	case event.Locale != "":
		return event.Locale
	default:
		return DetectLocale(vars["preview"], e.config.DefaultLocale)
	}
}

func displayName(p domain.Participant) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return "there"
}

// run starts every task and collects results until all are done or the
// dispatch timeout fires. It never fails.
func (e *Engine) run(ctx context.Context, tasks []task) []notification.ChannelResult {
	results := make(chan struct {
		key    string
		result notification.ChannelResult
	}, len(tasks))
	collected := make(map[string]notification.ChannelResult, len(tasks))

	// Attempts outlive the dispatch call, so they only inherit its values.
	background := context.WithoutCancel(ctx)
	for _, t := range tasks {
		go func(t task) {
			r := e.attempt(background, t)
			results <- struct {
				key    string
				result notification.ChannelResult
			}{t.key(), r}
		}(t)
	}

	timer := time.NewTimer(e.config.DispatchTimeout)
	defer timer.Stop()
wait:
	for len(collected) < len(tasks) {
		select {
		case r := <-results:
			collected[r.key] = r.result
		case <-timer.C:
			break wait
		}
	}

	out := make([]notification.ChannelResult, 0, len(tasks))
	for _, t := range tasks {
		if r, ok := collected[t.key()]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, e.pending(t))
	}
	return out
}

// attempt runs one delivery with its own timeout and records the attempt.
func (e *Engine) attempt(ctx context.Context, t task) notification.ChannelResult {
	result := notification.ChannelResult{
		NotificationID: t.notification.ID,
		RecipientID:    t.notification.RecipientID,
		Channel:        t.channel,
	}
	providerID, err := e.send(ctx, t)
	switch {
	case err == nil:
		result.Outcome = notification.Success
		result.ProviderMessageID = providerID
	case errors.Is(err, context.DeadlineExceeded):
		result.Outcome = notification.Timeout
		result.Error = err.Error()
	default:
		result.Outcome = notification.Failure
		result.Error = err.Error()
	}
	if result.Outcome != notification.Success {
		e.log.Warn("Delivery failed",
			"notification_id", t.notification.ID,
			"channel", t.channel,
			"outcome", result.Outcome,
			"error", result.Error)
	}
	e.record(t, result)
	return result
}

func (e *Engine) send(ctx context.Context, t task) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	sender, ok := e.senders[t.channel]
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrChannelUnavailable, t.channel)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.config.AttemptTimeout)
	defer cancel()

	type sent struct {
		id  string
		err error
	}
	done := make(chan sent, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- sent{err: fmt.Errorf("%w: sender panic: %v", errors.ErrChannelDispatch, r)}
			}
		}()
		id, err := sender.Send(attemptCtx, t.delivery)
		done <- sent{id: id, err: err}
	}()

	select {
	case s := <-done:
		if s.err != nil && attemptCtx.Err() != nil {
			return "", fmt.Errorf("%w: %v", context.DeadlineExceeded, s.err)
		}
		return s.id, s.err
	case <-attemptCtx.Done():
		return "", fmt.Errorf("%w: %s attempt exceeded %s", context.DeadlineExceeded, t.channel, e.config.AttemptTimeout)
	}
}

func (e *Engine) pending(t task) notification.ChannelResult {
	result := notification.ChannelResult{
		NotificationID: t.notification.ID,
		RecipientID:    t.notification.RecipientID,
		Channel:        t.channel,
		Outcome:        notification.Pending,
		Error:          fmt.Sprintf("still running after %s", e.config.DispatchTimeout),
	}
	e.record(t, result)
	return result
}

func (e *Engine) record(t task, result notification.ChannelResult) {
	attempt := notification.DeliveryAttempt{
		ID:                uuid.New(),
		NotificationID:    t.notification.ID,
		RecipientID:       t.notification.RecipientID,
		Channel:           t.channel,
		Outcome:           result.Outcome,
		ProviderMessageID: result.ProviderMessageID,
		Error:             result.Error,
		Try:               t.try,
		AttemptedAt:       e.now(),
	}
	if err := e.deliveries.Append(attempt); err != nil {
		e.log.Error("Unable to record delivery attempt",
			"notification_id", t.notification.ID,
			"channel", t.channel,
			"error", err)
	}
}
