// Command splitmail divides one shopping list and prints every recipient's
// share. With -send it also mails each recipient through SMTP.
//
//	splitmail -in request.json
//	splitmail -send -smtp localhost:2025 -from splits@example.com < request.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	domshopping "example.com/divide-account/internal/domain/shopping"
	domsplit "example.com/divide-account/internal/domain/split"
	"example.com/divide-account/internal/infra/logging"
	"example.com/divide-account/internal/infra/notify"
	"example.com/divide-account/internal/infra/persistence/memory"
	divideuc "example.com/divide-account/internal/usecase/divide"
)

type options struct {
	in       string
	send     bool
	smtpAddr string
	from     string
}

type output struct {
	Total       int64           `json:"total"`
	BaseShare   int64           `json:"base_share"`
	Remainder   int64           `json:"remainder"`
	Allocations domsplit.Shares `json:"allocations"`
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "-", "request JSON file, - for stdin")
	flag.BoolVar(&opts.send, "send", false, "mail every recipient their share")
	flag.StringVar(&opts.smtpAddr, "smtp", "localhost:2025", "SMTP server address")
	flag.StringVar(&opts.from, "from", "splits@example.com", "sender address")
	flag.Parse()

	logging.Setup("info")

	if err := run(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
		var verr *domshopping.ValidationError
		if errors.As(err, &verr) {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(verr)
		}
		slog.Error("split failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	src := stdin
	if opts.in != "-" && opts.in != "" {
		f, err := os.Open(opts.in)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		src = f
	}

	in, err := divideuc.DecodeInput(src)
	if err != nil {
		return err
	}
	in.Notify = opts.send

	var notifier divideuc.Notifier
	if opts.send {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Addr: opts.smtpAddr,
			From: opts.from,
		})
	}
	svc := divideuc.NewService(divideuc.NewValidator(), memory.NewSplitRepository(1), notifier, nil)

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	s, err := svc.Divide(ctx, in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		Total:       s.Allocation.Total,
		BaseShare:   s.Allocation.BaseShare,
		Remainder:   s.Allocation.Remainder,
		Allocations: s.Allocation.Shares,
	})
}
