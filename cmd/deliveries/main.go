// Command deliveries prints the delivery attempts recorded by the messaging
// server, by notification, by recipient or over a time window.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"rental-chat/domain/notification"
	"rental-chat/infrastructure/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	// DELIVERIES_COLOURS paints the outcome column
	Colours bool `envconfig:"DELIVERIES_COLOURS" default:"true"`
}

func main() {
	notificationID := flag.String("notification", "", "Notification id")
	recipient := flag.String("recipient", "", "Recipient user id")
	since := flag.Duration("since", time.Hour, "Window length ending now")
	flag.Parse()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatal("Config error: ", err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := storage.NewDeliveryRepository(db, logs.GetLoggerFromString("WARN"))
	attempts, err := query(repository, *notificationID, *recipient, *since, time.Now().UTC())
	if err != nil {
		log.Fatal(err)
	}
	render(os.Stdout, attempts, config.Colours)
}

func query(repository storage.IDeliveryRepository, notificationID, recipient string,
	since time.Duration, now time.Time) ([]notification.DeliveryAttempt, error) {
	switch {
	case notificationID != "":
		id, err := uuid.Parse(notificationID)
		if err != nil {
			return nil, fmt.Errorf("invalid notification id %q: %w", notificationID, err)
		}
		return repository.ByNotification(id)
	case recipient != "":
		return repository.ByRecipient(recipient, now.Add(-since), now)
	default:
		return repository.Between(now.Add(-since), now)
	}
}

func render(w io.Writer, attempts []notification.DeliveryAttempt, colours bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Attempted At", "Notification", "Recipient", "Channel", "Try", "Outcome", "Provider ID", "Error"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, a := range attempts {
		table.Append([]string{
			a.AttemptedAt.Format(time.RFC3339),
			a.NotificationID.String(),
			a.RecipientID,
			string(a.Channel),
			strconv.Itoa(a.Try),
			paint(a.Outcome, colours),
			a.ProviderMessageID,
			a.Error,
		})
	}
	table.Render()
	fmt.Fprintf(w, "%d attempt(s)\n", len(attempts))
}

func paint(outcome notification.Outcome, colours bool) string {
	if !colours {
		return string(outcome)
	}
	switch outcome {
	case notification.Success:
		return color.FgGreen.Render(string(outcome))
	case notification.Failure, notification.Timeout:
		return color.FgRed.Render(string(outcome))
	default:
		return color.FgYellow.Render(string(outcome))
	}
}
