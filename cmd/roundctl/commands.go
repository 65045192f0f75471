package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rpggio/roundup/internal/app"
	"github.com/rpggio/roundup/internal/clock"
	"github.com/rpggio/roundup/internal/config"
	"github.com/rpggio/roundup/internal/domain/challenge"
	"github.com/rpggio/roundup/internal/domain/stats"
	"github.com/rpggio/roundup/internal/repository"
	"github.com/rpggio/roundup/internal/sqlite"
	"github.com/rpggio/roundup/pkg/logging"
	"github.com/urfave/cli/v2"
)

// runtime is the state shared by every command after flags are read.
type runtime struct {
	cfg    config.Config
	loc    *time.Location
	clock  clock.Clock
	logger *slog.Logger
}

func newCLI(out io.Writer, clk clock.Clock) *cli.App {
	rt := &runtime{clock: clock.OrSystem(clk)}

	return &cli.App{
		Name:      "roundctl",
		Usage:     "operate a roundup challenge database",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (default from config)"},
			&cli.StringFlag{Name: "timezone", Usage: "IANA zone whose calendar days bound rounds"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if c.IsSet("db") {
				cfg.DB.Path = c.String("db")
			}
			if c.IsSet("timezone") {
				cfg.Calendar.Timezone = c.String("timezone")
			}
			if c.IsSet("log-level") {
				cfg.Log.Level = c.String("log-level")
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.loc = loc
			rt.logger = logging.New(c.App.ErrWriter, cfg.Log.Level)
			return nil
		},
		Commands: []*cli.Command{
			scheduleCommand(rt),
			reconcileCommand(rt),
			notifyCommand(rt),
			importCommand(rt),
			keyCommand(rt),
		},
	}
}

func (rt *runtime) open() (*app.App, func(), error) {
	db, err := sqlite.New(rt.cfg.DB.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, nil, err
	}
	a := app.New(db, app.Options{Location: rt.loc, Clock: rt.clock, Logger: rt.logger})
	return a, func() { db.Close() }, nil
}

func scheduleCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "preview the rounds a challenge window would be split into",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Usage: `first day, e.g. 2026-03-02 or "next monday"`, Required: true},
			&cli.StringFlag{Name: "end", Usage: "last day; omit for a single day"},
			&cli.StringFlag{Name: "cadence", Usage: "daily, weekly or monthly", Value: string(challenge.CadenceWeekly)},
		},
		Action: func(c *cli.Context) error {
			now := rt.clock.Now()
			start, err := parseStart(c.String("start"), now, rt.loc)
			if err != nil {
				return err
			}
			var end *time.Time
			if c.IsSet("end") {
				e, err := parseEnd(c.String("end"), now, rt.loc)
				if err != nil {
					return err
				}
				end = &e
			}

			windows, err := challenge.GenerateRounds(start, end, challenge.Cadence(c.String("cadence")), now)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROUND\tSTART\tEND\tSTATUS\tSTARTS")
			for _, r := range windows {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					r.Number,
					r.Start.Format(time.DateTime),
					r.End.Format(time.DateTime),
					r.Status,
					humanize.RelTime(r.Start, now, "ago", "from now"),
				)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%d rounds\n", len(windows))
			return nil
		},
	}
}

func reconcileCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "complete elapsed rounds and post winners",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "challenge", Usage: "reconcile one challenge instead of all round-based challenges"},
		},
		Action: func(c *cli.Context) error {
			a, closeDB, err := rt.open()
			if err != nil {
				return err
			}
			defer closeDB()

			var results []app.ReconcileResult
			if id := c.String("challenge"); id != "" {
				results = []app.ReconcileResult{a.Reconcile(c.Context, id)}
			} else if results, err = a.ReconcileAll(c.Context); err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(c.App.Writer, "no round-based challenges")
				return nil
			}

			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(c.App.Writer, "%s\terror: %v\n", res.ChallengeID, res.Err)
					continue
				}
				completed := 0
				for _, r := range res.Overview.Rounds {
					if r.Status == challenge.RoundCompleted {
						completed++
					}
				}
				fmt.Fprintf(c.App.Writer, "%s\t%d/%d rounds completed\t%s\n",
					res.ChallengeID, completed, len(res.Overview.Rounds), res.Completion.Outcome)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d challenges failed", failed, len(results))
			}
			return nil
		},
	}
}

func notifyCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "post challenge_won events for a group's ended challenges",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "group", Required: true},
		},
		Action: func(c *cli.Context) error {
			a, closeDB, err := rt.open()
			if err != nil {
				return err
			}
			defer closeDB()

			results, err := a.Notify(c.Context, c.String("group"))
			if err != nil {
				return err
			}
			for _, res := range results {
				line := fmt.Sprintf("%s\t%s", res.ChallengeID, res.Outcome)
				if res.WinnerName != "" {
					line += "\t" + res.WinnerName
				}
				fmt.Fprintln(c.App.Writer, line)
			}
			return nil
		},
	}
}

func importCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "upsert daily records from a JSON array",
		ArgsUsage: "<file.json | ->",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected one file argument")
			}

			var in io.Reader = os.Stdin
			if name := c.Args().First(); name != "-" {
				f, err := os.Open(name)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var records []stats.DailyRecord
			if err := json.NewDecoder(in).Decode(&records); err != nil {
				return fmt.Errorf("decoding records: %w", err)
			}

			a, closeDB, err := rt.open()
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := a.Stats.Import(c.Context, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "imported %d records\n", n)
			return nil
		},
	}
}

func keyCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "issue an API key for a member; only its hash is stored",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "member", Required: true},
		},
		Action: func(c *cli.Context) error {
			a, closeDB, err := rt.open()
			if err != nil {
				return err
			}
			defer closeDB()

			key := uuid.NewString()
			member := c.String("member")
			if err := a.APIKeys.Add(c.Context, member, key, rt.clock.Now()); err != nil {
				if errors.Is(err, repository.ErrForeignKeyViolation) {
					return fmt.Errorf("unknown member %q", member)
				}
				return err
			}
			fmt.Fprintln(c.App.Writer, key)
			return nil
		},
	}
}
