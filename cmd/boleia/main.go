package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rewired-gh/boleia/internal/config"
	"github.com/rewired-gh/boleia/internal/export"
	"github.com/rewired-gh/boleia/internal/logger"
	"github.com/rewired-gh/boleia/internal/models"
	"github.com/rewired-gh/boleia/internal/session"
	"github.com/rewired-gh/boleia/internal/stats"
	"github.com/rewired-gh/boleia/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	noSeed     = flag.Bool("no-seed", false, "Skip the weekday ride check for this run")
)

const usage = `usage: boleia [-config path] [-no-seed] <command> [flags]

commands:
  list                       print all events
  add    -title ... [flags]  add an event
  update -id ... [flags]     replace an event
  delete -id ...             remove an event
  stats  [-notify]           print counts, people and prices
  export [-format json|yaml|ics]
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug("Configuration loaded from %s", *configPath)

	var notifier session.Notifier
	if cfg.Telegram.Enabled {
		client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		notifier = client
		logger.Debug("Telegram client initialized")
	}

	sess, err := session.New(cfg, notifier)
	if err != nil {
		logger.Fatal("Failed to open storage: %v", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	if _, err := sess.Start(!*noSeed); err != nil {
		logger.Error("Ride seeding failed: %v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"list"}
	}
	if err := run(sess, args[0], args[1:], os.Stdout); err != nil {
		logger.Error("%s: %v", args[0], err)
		_ = sess.Close()
		os.Exit(1)
	}
}

func run(sess *session.Session, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "list":
		return listEvents(out, sess.Store.Events())
	case "add":
		return addEvent(sess, args)
	case "update":
		return updateEvent(sess, args)
	case "delete":
		return deleteEvent(sess, args)
	case "stats":
		return printStats(sess, args, out)
	case "export":
		return exportEvents(sess, args, out)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

// eventFlags binds the editable event fields to fs.
type eventFlags struct {
	id, title, start, end, name, description, people *string
}

func bindEventFlags(fs *flag.FlagSet) eventFlags {
	return eventFlags{
		id:          fs.String("id", "", "event id (generated when empty on add)"),
		title:       fs.String("title", "", "event title"),
		start:       fs.String("start", "", "start date YYYY-MM-DD"),
		end:         fs.String("end", "", "end date YYYY-MM-DD (defaults to start)"),
		name:        fs.String("name", "", "display name (defaults to title)"),
		description: fs.String("description", "", "free text"),
		people:      fs.String("people", "", "comma separated participants"),
	}
}

func (f eventFlags) event() models.Event {
	ev := models.Event{
		ID:          *f.id,
		Title:       *f.title,
		Start:       *f.start,
		End:         *f.end,
		Name:        *f.name,
		Description: *f.description,
		People:      splitPeople(*f.people),
	}
	if ev.End == "" {
		ev.End = ev.Start
	}
	if ev.Name == "" {
		ev.Name = ev.Title
	}
	return ev
}

func splitPeople(s string) []string {
	people := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			people = append(people, p)
		}
	}
	return people
}

func addEvent(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	f := bindEventFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ev := f.event()
	if ev.ID == "" {
		ev.ID = sess.Store.NextID()
	}
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	if err := sess.Store.Add(ev); err != nil {
		return err
	}
	logger.Info("Added event %s (%s, %s..%s)", ev.ID, ev.Title, ev.Start, ev.End)
	return nil
}

func updateEvent(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	f := bindEventFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	current, err := sess.Store.Get(*f.id)
	if err != nil {
		return err
	}

	// Only flags given on the command line replace fields.
	fs.Visit(func(fl *flag.Flag) {
		v := fl.Value.String()
		switch fl.Name {
		case "title":
			current.Title = v
		case "start":
			current.Start = v
		case "end":
			current.End = v
		case "name":
			current.Name = v
		case "description":
			current.Description = v
		case "people":
			current.People = splitPeople(v)
		}
	})

	if err := current.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	if err := sess.Store.Update(current); err != nil {
		return err
	}
	logger.Info("Updated event %s", current.ID)
	return nil
}

func deleteEvent(sess *session.Session, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "event id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	if err := sess.Store.Delete(*id); err != nil {
		return err
	}
	logger.Info("Deleted event %s", *id)
	return nil
}

func listEvents(out io.Writer, events []models.Event) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTART\tEND\tTITLE\tPEOPLE")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ev.ID, ev.Start, ev.End, ev.Title, strings.Join(ev.People, ", "))
	}
	return tw.Flush()
}

func printStats(sess *session.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	notify := fs.Bool("notify", false, "also send the summary to Telegram")
	if err := fs.Parse(args); err != nil {
		return err
	}

	summary := sess.Summary()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tCOUNT\tPRICE\tSUBTOTAL")
	for _, line := range summary.Lines {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", line.Title, line.Count,
			stats.FormatAmount(line.Price, ""), stats.FormatAmount(line.Subtotal, summary.Currency))
	}
	fmt.Fprintf(tw, "total\t\t\t%s\n", stats.FormatAmount(summary.Total, summary.Currency))
	if err := tw.Flush(); err != nil {
		return err
	}

	if people := sess.Stats.People(); len(people) > 0 {
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PERSON\tEVENTS")
		for _, p := range people {
			fmt.Fprintf(tw, "%s\t%d\n", p.Name, p.Count)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if *notify {
		return sess.Notify()
	}
	return nil
}

func exportEvents(sess *session.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", export.FormatJSON, "json, yaml or ics")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return export.Write(out, *format, sess.Store.Events())
}
