// Package cli is the terminal chat client: a line based loop over the same
// intake, session and assembler the web page mirrors.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/itchan-dev/parley/frontend/internal/chat"
	"github.com/itchan-dev/parley/shared/domain"
	"github.com/itchan-dev/parley/shared/logger"
	"github.com/itchan-dev/parley/shared/validation"
)

const helpText = `Type a message and press enter to send it with the attached files.
  /attach <path>...     attach files
  /files                list attached files
  /remove <n>           drop attached file n
  /reset                clear the conversation
  /login <email> <pw>   sign in
  /logout               sign out
  /profile [field value] show or edit the profile (name, email, bio, skills, avatar, reset)
  /help                 show this help
  /quit                 exit
Ctrl-C while an answer streams stops it.`

var errQuit = errors.New("quit")

// Client is the part of the api client the loop needs besides chat.Transport.
type Client interface {
	chat.Transport
	Login(ctx context.Context, email, password string) ([]*http.Cookie, error)
	Logout(ctx context.Context) error
	LoggedIn() bool
}

type App struct {
	client    Client
	intake    *chat.Intake
	batch     *chat.Batch
	session   *chat.Session
	assembler *chat.Assembler
	profiles  *chat.ProfileStore
	out       io.Writer

	// Interrupts cancels the answer being streamed, one value per stop.
	Interrupts <-chan struct{}

	email   string // signed-in account, the profile email defaults to it
	printed int
}

func New(client Client, policy *validation.Policy, previews *chat.Previews, profiles *chat.ProfileStore, out io.Writer) *App {
	a := &App{
		client:   client,
		intake:   chat.NewIntake(policy, previews),
		batch:    &chat.Batch{},
		session:  chat.NewSession(),
		profiles: profiles,
		out:      out,
	}
	a.assembler = chat.NewAssembler(a.session, client, a.render)
	return a
}

// Run reads commands until EOF, /quit or ctx is done.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	defer a.batch.Close()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	a.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		err := a.Handle(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(a.out, err)
		}
		a.prompt()
	}
	return scanner.Err()
}

func (a *App) prompt() {
	fmt.Fprint(a.out, "> ")
}

// Busy reports whether an answer is being streamed.
func (a *App) Busy() bool {
	return a.session.InFlight()
}

// Handle runs one input line.
func (a *App) Handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		if line == "" && a.batch.Len() == 0 {
			return nil
		}
		return a.send(ctx, line)
	}

	cmd, rest, _ := strings.Cut(line, " ")
	args := strings.Fields(rest)
	switch cmd {
	case "/attach":
		return a.attach(args)
	case "/files":
		a.listFiles()
		return nil
	case "/remove":
		return a.remove(args)
	case "/reset":
		a.session.Reset()
		fmt.Fprintln(a.out, "Conversation cleared.")
		return nil
	case "/login":
		if len(args) != 2 {
			return errors.New("usage: /login <email> <password>")
		}
		return a.Login(ctx, args[0], args[1])
	case "/logout":
		if err := a.client.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	case "/profile":
		return a.profile(strings.TrimSpace(rest))
	case "/help":
		fmt.Fprintln(a.out, helpText)
		return nil
	case "/quit", "/exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %s, try /help", cmd)
	}
}

// Login signs in and remembers the account for the profile.
func (a *App) Login(ctx context.Context, email, password string) error {
	if _, err := a.client.Login(ctx, email, password); err != nil {
		return err
	}
	a.email = email
	fmt.Fprintln(a.out, "Signed in as", email)
	return nil
}

func (a *App) send(ctx context.Context, prompt string) error {
	if !a.client.LoggedIn() {
		return errors.New("not signed in, use /login")
	}

	files := a.batch.Take()
	sendCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if a.Interrupts != nil {
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-a.Interrupts:
				cancel()
			case <-done:
			}
		}()
	}

	state, err := a.assembler.Submit(sendCtx, prompt, files)
	if err != nil {
		return err
	}
	logger.Log.Debug("submission finished", "state", state, "files", len(files))
	return nil
}

// render prints the growing answer as it streams in.
func (a *App) render(ev chat.Event) {
	switch ev.State {
	case chat.StateSending:
		a.printed = 0
	case chat.StateStreaming:
		if len(ev.Content) > a.printed {
			fmt.Fprint(a.out, ev.Content[a.printed:])
			a.printed = len(ev.Content)
		}
	case chat.StateDone:
		fmt.Fprintln(a.out)
	case chat.StateCancelled:
		fmt.Fprintln(a.out, " [stopped]")
	case chat.StateFailed:
		if a.printed > 0 {
			fmt.Fprintln(a.out)
		}
		fmt.Fprintln(a.out, ev.Content)
	}
}

func (a *App) attach(paths []string) error {
	if len(paths) == 0 {
		return errors.New("usage: /attach <path>...")
	}

	var files []chat.File
	var res chat.Result
	for _, p := range paths {
		f, err := chat.OpenLocalFile(p)
		if err != nil {
			res.Skipped = append(res.Skipped, chat.Skip{Name: p, Reason: err.Error()})
			continue
		}
		files = append(files, f)
	}

	added := a.intake.Add(a.batch.Pending(), files)
	a.batch.Add(added.Accepted...)
	res.Accepted = added.Accepted
	res.Skipped = append(res.Skipped, added.Skipped...)

	for _, att := range res.Accepted {
		fmt.Fprintf(a.out, "attached %s (%s)\n", att.File.Name(), att.Kind)
	}
	if summary := res.Summary(); summary != "" {
		fmt.Fprintln(a.out, summary)
	}
	return nil
}

func (a *App) listFiles() {
	pending := a.batch.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No files attached.")
		return
	}
	for i, att := range pending {
		line := fmt.Sprintf("%d. %s  %s  %s", i+1, att.File.Name(), validation.FormatSizeMB(att.File.Size()), att.Kind)
		if att.Preview != nil {
			line += "  preview: " + att.Preview.Path
		}
		fmt.Fprintln(a.out, line)
	}
	fmt.Fprintf(a.out, "total %s\n", validation.FormatSizeMB(a.batch.TotalSize()))
}

func (a *App) remove(args []string) error {
	pending := a.batch.Pending()
	if len(args) != 1 {
		return errors.New("usage: /remove <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(pending) {
		return fmt.Errorf("no attached file %s", args[0])
	}
	att := pending[n-1]
	a.batch.Remove(att.ID)
	fmt.Fprintln(a.out, "removed", att.File.Name())
	return nil
}

func (a *App) profile(args string) error {
	p, err := a.profiles.Load()
	if err != nil {
		return err
	}
	if args == "" {
		printProfile(a.out, p)
		return nil
	}

	field, value, _ := strings.Cut(args, " ")
	value = strings.TrimSpace(value)
	switch field {
	case "reset":
		if err := a.profiles.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Profile cleared.")
		return nil
	case "name":
		p.Name = value
	case "email":
		p.Email = value
	case "bio":
		p.Bio = value
	case "skills":
		p.Skills = splitSkills(value)
	case "avatar":
		p.AvatarURL = value
	default:
		return fmt.Errorf("unknown profile field %q", field)
	}
	if p.Email == "" {
		p.Email = a.email
	}

	if err := a.profiles.Save(p); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

func printProfile(w io.Writer, p domain.Profile) {
	if p.Name == "" && p.Email == "" {
		fmt.Fprintln(w, "No profile yet. Set one with /profile name <name> and /profile email <email>.")
		return
	}
	fmt.Fprintf(w, "name:   %s\nemail:  %s\nbio:    %s\nskills: %s\navatar: %s\n",
		p.Name, p.Email, p.Bio, strings.Join(p.Skills, ", "), p.AvatarURL)
}

func splitSkills(s string) []string {
	var skills []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}
