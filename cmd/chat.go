package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/gcsetutor/internal/turn"
	"github.com/abhisek/gcsetutor/internal/turnlock"
	"github.com/abhisek/gcsetutor/internal/tutor"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a tutoring session in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Log.Level == "" {
			cfg.Log.Level = "warn"
		}
		log, err := newLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync()

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		eng, err := buildEngine(ctx, cfg, st, log)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		sessionID, _ := flags.GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		student, _ := flags.GetString("student")
		topic, _ := flags.GetString("topic")
		subject, _ := flags.GetString("subject")
		style, _ := flags.GetString("style")
		placed, _ := flags.GetBool("placed")

		base := turn.Input{
			StudentID:     student,
			SessionID:     sessionID,
			TopicID:       slug(topic),
			TopicName:     topic,
			SubjectCode:   strings.ToUpper(subject),
			SubjectID:     strings.ToUpper(subject),
			LearningStyle: style,
			PositionKnown: placed,
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("GCSE tutor")+" "+metaStyle.Render("session "+sessionID))
		if eng.offline {
			fmt.Fprintln(out, errorStyle.Render("Offline mode: set an API key to get real feedback."))
		}
		fmt.Fprintln(out, metaStyle.Render("Type your answer and press enter. Ctrl-D to finish."))

		return runChat(ctx, chatLoop{
			in:      cmd.InOrStdin(),
			out:     out,
			base:    base,
			handler: eng.orchestrator,
			locker:  turnlock.NewLocal(),
		})
	},
}

type turnHandler interface {
	HandleTurn(ctx context.Context, in turn.Input) (*turn.Reply, error)
}

type chatLoop struct {
	in      io.Reader
	out     io.Writer
	base    turn.Input
	handler turnHandler
	locker  turnlock.Locker
}

func runChat(ctx context.Context, c chatLoop) error {
	scanner := bufio.NewScanner(c.in)
	var history []tutor.HistoryMessage

	for {
		fmt.Fprint(c.out, promptStyle.Render("you › "))
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		msg := scanner.Text()
		if strings.TrimSpace(msg) == "/quit" {
			return nil
		}

		in := c.base
		in.Message = msg
		in.History = history

		release, err := c.locker.Lock(ctx, in.SessionID)
		if err != nil {
			return err
		}
		reply, err := c.handler.HandleTurn(ctx, in)
		_ = release()
		if err != nil {
			if errors.Is(err, turn.ErrTutorUnavailable) || errors.Is(err, turn.ErrStateUnavailable) {
				fmt.Fprintln(c.out, errorStyle.Render("The tutor is unavailable right now. Try again."))
				continue
			}
			return err
		}

		var b strings.Builder
		for chunk := range reply.Chunks() {
			b.WriteString(chunk)
		}
		fmt.Fprintln(c.out, tutorStyle.Render(b.String()))
		fmt.Fprintln(c.out, metaStyle.Render(describeDecision(reply.Decision)))

		history = append(history,
			tutor.HistoryMessage{Role: "user", Content: msg},
			tutor.HistoryMessage{Role: "assistant", Content: reply.Message},
		)
	}
}

func describeDecision(d turn.Decision) string {
	parts := []string{"phase " + string(d.Phase), "action " + string(d.Action)}
	if d.Evaluation.Judged() {
		parts = append(parts, fmt.Sprintf("%s (%.0f%%)", d.Evaluation, d.Confidence*100))
	}
	if d.ErrorType != "" {
		parts = append(parts, "error "+d.ErrorType)
	}
	if len(d.DeliveryModes) > 0 {
		parts = append(parts, strings.Join(d.DeliveryModes, ", "))
	}
	return strings.Join(parts, " · ")
}

// slug turns a topic name into a stable id.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func init() {
	f := chatCmd.Flags()
	f.String("session", "", "Session id to resume (default: new session)")
	f.String("student", defaultStudent(), "Student id")
	f.String("topic", "", "Topic name, e.g. \"Quadratics\"")
	f.String("subject", "", "Subject code, e.g. MATHS")
	f.String("style", "", "Learning style: visual, auditory, read_write, kinesthetic")
	f.Bool("placed", false, "Skip the diagnostic questions")
}

func defaultStudent() string {
	if u := getenv("USER"); u != "" {
		return u
	}
	return "local"
}
