// Package main runs the interactive event admin client: a shell over the
// remote gateway for listing, toggling, reordering, deleting and voting
// on events.
package main

import (
	"bufio"
	"cmp"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/ventureops/eventadmin/internal/config"
	"github.com/ventureops/eventadmin/internal/events"
	"github.com/ventureops/eventadmin/internal/gateway"
	"github.com/ventureops/eventadmin/internal/guard"
	"github.com/ventureops/eventadmin/internal/logger"
	"github.com/ventureops/eventadmin/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

var showVer = flag.Bool("version", false, "show build version and date")

// app bundles the wired components the shell commands operate on.
type app struct {
	store  *session.Store
	client *gateway.Client
	ctrl   *events.Controller
	guard  *guard.Guard
	in     *bufio.Scanner
}

func main() {
	options := config.Parse()

	if *showVer {
		fmt.Printf("Event Admin Client\nVersion: %s\nBuild Date: %s\n",
			cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	lg := logger.New()
	if err := lg.Init(options.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Log.Sync() }()

	store, err := session.Open(options.StateDir)
	if err != nil {
		lg.Log.Fatal("cannot open session state", zap.Error(err))
	}

	client := gateway.New(options.ServerURL, store, nil, lg.Log)
	ctrl := events.New(client, lg.Log)

	a := &app{
		store:  store,
		client: client,
		ctrl:   ctrl,
		guard:  guard.New(store),
		in:     bufio.NewScanner(os.Stdin),
	}
	a.repl()
}

// repl runs the shell loop, accepting commands to manage events.
func (a *app) repl() {
	ctx := context.Background()

	for {
		fmt.Print("eventadmin> ")
		if !a.in.Scan() {
			break
		}
		line := strings.TrimSpace(a.in.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, login, logout, list, info <id>, toggle <id>, up <id>, down <id>, sort <id> <n>, delete <id>, vote <id> <n>, exit")
		case "login":
			a.login(ctx)
		case "logout":
			a.store.Logout()
			fmt.Println("Logged out")
		case "list":
			if a.admitted(guard.ViewDashboard) {
				a.list(ctx)
			}
		case "info":
			if id, ok := parseID(args, 2); ok && a.admitted(guard.ViewDetail) {
				a.info(ctx, id)
			}
		case "toggle":
			if id, ok := parseID(args, 2); ok && a.admitted(guard.ViewDashboard) {
				a.toggle(ctx, id)
			}
		case "up":
			if id, ok := parseID(args, 2); ok && a.admitted(guard.ViewDashboard) {
				a.bump(ctx, id, +1)
			}
		case "down":
			if id, ok := parseID(args, 2); ok && a.admitted(guard.ViewDashboard) {
				a.bump(ctx, id, -1)
			}
		case "sort":
			id, n, ok := parseIDAndValue(args)
			if ok && a.admitted(guard.ViewDashboard) {
				a.reorder(ctx, id, n)
			}
		case "delete":
			if id, ok := parseID(args, 2); ok && a.admitted(guard.ViewDashboard) {
				a.remove(ctx, id)
			}
		case "vote":
			id, n, ok := parseIDAndValue(args)
			if ok && a.admitted(guard.ViewDashboard) {
				a.vote(ctx, id, n)
			}
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// admitted consults the route guard for the target view; when guarded it
// redirects the operator to the login prompt and denies the command.
func (a *app) admitted(target guard.View) bool {
	if a.guard.Resolve(target) == guard.ViewLogin && target != guard.ViewLogin {
		fmt.Println("Login required")
		return false
	}
	return true
}

func (a *app) login(ctx context.Context) {
	fmt.Print("Username: ")
	if !a.in.Scan() {
		return
	}
	username := strings.TrimSpace(a.in.Text())

	fmt.Print("Password: ")
	if !a.in.Scan() {
		return
	}
	password := strings.TrimSpace(a.in.Text())

	ok, err := a.store.Login(ctx, a.client, username, password)
	if err != nil {
		fmt.Println(err)
		return
	}
	if ok {
		fmt.Println("Login successful")
	}
}

func (a *app) list(ctx context.Context) {
	list, err := a.ctrl.Load(ctx)
	if err != nil {
		fmt.Println("Error fetching event list:", err)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tRANK\tSORT\tVOTES\tVISIBLE")
	for _, ev := range list {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%v\n",
			ev.ID, ev.Title, ev.Rank, ev.SortOrder, ev.Votes, ev.Visible())
	}
	_ = w.Flush()
}

func (a *app) info(ctx context.Context, id int64) {
	ev, err := a.ctrl.FetchDetail(ctx, id)
	if err != nil {
		fmt.Println("Error fetching event detail:", err)
		return
	}
	fmt.Printf("ID: %d\nTitle: %s\nDescription: %s\nRank: %d\nSort Order: %d\nVotes: %d\nVisible: %v\nIcon: %s\nLive: %s\nWeb: %s\nTwitter: %s\n",
		ev.ID, ev.Title, ev.Description, ev.Rank, ev.SortOrder, ev.Votes,
		ev.Visible(), ev.IconURL, ev.LiveURL, ev.WebURL, ev.TwitterURL)
}

func (a *app) toggle(ctx context.Context, id int64) {
	if err := a.ctrl.ToggleVisibility(ctx, id); err != nil {
		fmt.Println("Error toggling event visibility:", err)
		return
	}
	fmt.Println("Event visibility updated")
}

// bump moves the event's sort order one step; downward steps clamp at 0.
func (a *app) bump(ctx context.Context, id int64, step int) {
	rec, ok := a.ctrl.Get(id)
	if !ok {
		fmt.Printf("Event %d not found; run 'list' first\n", id)
		return
	}
	a.reorder(ctx, id, max(0, rec.SortOrder+step))
}

func (a *app) reorder(ctx context.Context, id int64, sort int) {
	if err := a.ctrl.Reorder(ctx, id, sort); err != nil {
		fmt.Println("Error setting event sort order:", err)
		return
	}
	fmt.Println("Event sort order updated")
}

func (a *app) remove(ctx context.Context, id int64) {
	if err := a.ctrl.Remove(ctx, id); err != nil {
		fmt.Println("Error deleting event:", err)
		return
	}
	fmt.Println("Event deleted")
}

func (a *app) vote(ctx context.Context, id int64, delta int) {
	if err := a.ctrl.AddVotes(ctx, id, delta); err != nil {
		fmt.Println("Error submitting votes:", err)
		return
	}
	fmt.Println("Votes submitted; totals refresh on the next 'list'")
}

// parseID reads args[1] as an event id, expecting want args in total.
func parseID(args []string, want int) (int64, bool) {
	if len(args) != want {
		fmt.Printf("Usage: %s <id>\n", args[0])
		return 0, false
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Printf("Invalid id %q\n", args[1])
		return 0, false
	}
	return id, true
}

// parseIDAndValue reads args[1] as an event id and args[2] as an integer.
func parseIDAndValue(args []string) (int64, int, bool) {
	if len(args) != 3 {
		fmt.Printf("Usage: %s <id> <n>\n", args[0])
		return 0, 0, false
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Printf("Invalid id %q\n", args[1])
		return 0, 0, false
	}
	n, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Printf("Invalid value %q\n", args[2])
		return 0, 0, false
	}
	return id, n, true
}
