package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"study-buddy/api/internal/assistant"
	"study-buddy/api/internal/llm"
	"study-buddy/api/internal/ocr"
	"study-buddy/api/internal/store"
	"study-buddy/api/internal/tutor"
	"study-buddy/api/internal/util"
)

const maxMessageLen = 3900

// Bot is the part of the Telegram client the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type ScanStore interface {
	Save(ctx context.Context, s *store.Scan) error
	ListRecent(ctx context.Context, email string, limit int) ([]store.Scan, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Router struct {
	Bot      Bot
	Sessions *Sessions

	// Remote answers questions when set; otherwise the chat's engine is asked directly.
	Remote     assistant.Asker
	Engines    *llm.Engines
	EngManager *llm.Manager
	Selector   *tutor.Selector
	Responder  *tutor.Responder
	Delay      time.Duration

	OCR      ocr.Recognizer
	OCRLangs []string
	Scans    ScanStore
	DB       Pinger

	Timeout time.Duration
	httpc   *http.Client
}

// reply is an outgoing message; Markup is optional.
type reply struct {
	Text   string
	Markup any
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	msg := upd.Message
	if msg == nil {
		return
	}
	cid := msg.Chat.ID

	switch {
	case msg.IsCommand():
		r.sendReply(cid, r.command(cid, msg.Command(), msg.CommandArguments()))
	case len(msg.Photo) > 0:
		r.acceptPhoto(cid, msg.Photo)
	case strings.TrimSpace(msg.Text) != "":
		r.answer(cid, msg.Text)
	}
}

func (r *Router) command(cid int64, cmd, args string) reply {
	args = strings.TrimSpace(args)
	sess := r.Sessions.Get(cid)

	switch strings.ToLower(cmd) {
	case "start":
		r.Sessions.Reset(cid)
		return reply{Text: "Hello beta! 👋 " + helpText}
	case "help":
		return reply{Text: helpText}
	case "health":
		if r.DB != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := r.DB.PingContext(ctx); err != nil {
				return reply{Text: "⚠️ Database: " + err.Error()}
			}
		}
		return reply{Text: "✅ OK"}
	case "mode":
		if args == "" {
			cur := sess.Snapshot().Mode
			return reply{Text: "Current mode: " + cur.Label() + ". Choose a mode:", Markup: makeModeKeyboard(cur)}
		}
		m := tutor.Mode(strings.ToLower(args))
		if !m.Known() {
			return reply{Text: "Unknown mode. Available: chat | study | exam | coding"}
		}
		sess.Update(func(st *SessionState) { st.Mode = m })
		return reply{Text: switchedText(m)}
	case "lang":
		return r.setField(sess, args, "language", "/lang English", func(st *SessionState) *string { return &st.Language })
	case "class":
		if args != "" {
			if n, err := strconv.Atoi(args); err != nil || n < 1 || n > 12 {
				return reply{Text: "Class should be a number from 1 to 12."}
			}
		}
		return r.setField(sess, args, "class", "/class 10", func(st *SessionState) *string { return &st.Class })
	case "subject":
		return r.setField(sess, args, "subject", "/subject Physics", func(st *SessionState) *string { return &st.Subject })
	case "board":
		return r.setField(sess, args, "board", "/board CBSE", func(st *SessionState) *string { return &st.Board })
	case "engine":
		return r.engineCommand(cid, args)
	case "scans":
		return r.listScans(cid)
	default:
		return reply{Text: "Unknown command. Try /help"}
	}
}

func (r *Router) setField(sess *Session, value, name, usage string, field func(*SessionState) *string) reply {
	if value == "" {
		st := sess.Snapshot()
		cur := *field(&st)
		if cur == "" {
			cur = "not set"
		}
		return reply{Text: fmt.Sprintf("Current %s: %s\nUsage: %s", name, cur, usage)}
	}
	sess.Update(func(st *SessionState) { *field(st) = value })
	return reply{Text: fmt.Sprintf("✅ %s set to %s.", strings.ToUpper(name[:1])+name[1:], value)}
}

func (r *Router) engineCommand(cid int64, name string) reply {
	if r.EngManager == nil || r.Engines == nil {
		return reply{Text: "❌ No language model is configured."}
	}
	if name == "" {
		cur := r.EngManager.Get(cid)
		if cur == nil {
			return reply{Text: "No engine selected.\nUsage: /engine gpt | /engine gemini"}
		}
		return reply{Text: fmt.Sprintf("Current engine: %s (%s)\nUsage: /engine gpt | /engine gemini", cur.Name(), cur.GetModel())}
	}
	eng, err := r.Engines.GetEngine(name)
	if err != nil {
		return reply{Text: "❌ " + err.Error()}
	}
	r.EngManager.Set(cid, eng)
	text := fmt.Sprintf("✅ Engine: %s (%s).", eng.Name(), eng.GetModel())
	if r.Remote != nil {
		text += "\nAnswers come from the tutor server; this engine is used when it is unreachable."
	}
	return reply{Text: text}
}

// scanOwner keys a chat's scans in the store.
func scanOwner(cid int64) string {
	return "telegram:" + strconv.FormatInt(cid, 10)
}

func (r *Router) listScans(cid int64) reply {
	if r.Scans == nil {
		return reply{Text: "Saved scans are not available."}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	scans, err := r.Scans.ListRecent(ctx, scanOwner(cid), store.DefaultScanLimit)
	if err != nil {
		log.Printf("telegram: list scans chat=%d: %v", cid, err)
		return reply{Text: "⚠️ Could not load your scans."}
	}
	return reply{Text: formatScans(scans, r.Sessions.Get(cid).Snapshot().ScanID)}
}

func formatScans(scans []store.Scan, current uuid.UUID) string {
	if len(scans) == 0 {
		return "No saved scans yet. Send me a photo of a page."
	}
	var b strings.Builder
	b.WriteString("📄 Your recent scans:\n")
	for i, s := range scans {
		marker := ""
		if s.ID == current {
			marker = " (current)"
		}
		fmt.Fprintf(&b, "\n%d. %s%s\n%s\n", i+1, s.CreatedAt.Format("02 Jan 15:04"), marker,
			util.Truncate(strings.Join(strings.Fields(s.Text), " "), 60, "…"))
	}
	return b.String()
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	m, ok := parseModeCallback(cb.Data)
	if !ok {
		return
	}
	r.Sessions.Get(cid).Update(func(st *SessionState) { st.Mode = m })
	r.send(cid, switchedText(m))
}

// asker picks the remote endpoint or, without one, the chat's engine.
// asker tries the tutor server first, then the chat's engine.
func (r *Router) asker(cid int64) assistant.Asker {
	var chain assistant.Chain
	if r.Remote != nil {
		chain = append(chain, r.Remote)
	}
	if r.EngManager != nil {
		if eng := r.EngManager.Get(cid); eng != nil {
			chain = append(chain, assistant.NewDirect(eng, r.Selector))
		}
	}
	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	}
	return chain
}

func (r *Router) answer(cid int64, text string) {
	_, _ = r.Bot.Request(tgbotapi.NewChatAction(cid, tgbotapi.ChatTyping))

	st := r.Sessions.Get(cid).Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	a := assistant.New(r.asker(cid), assistant.WithDelay(r.Delay), assistant.WithResponder(r.Responder))
	out := a.Reply(ctx, assistant.Question{
		Message:  text,
		Context:  st.Context,
		Mode:     st.Mode,
		Language: st.Language,
		Class:    st.Class,
		Subject:  st.Subject,
	})
	r.send(cid, out)
}

func (r *Router) acceptPhoto(cid int64, sizes []tgbotapi.PhotoSize) {
	if r.OCR == nil {
		r.send(cid, "Photo recognition is not configured.")
		return
	}
	ph := sizes[len(sizes)-1] // largest

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	url, err := r.Bot.GetFileDirectURL(ph.FileID)
	if err != nil {
		r.sendError(cid, err)
		return
	}
	img, err := r.download(ctx, url)
	if err != nil {
		r.sendError(cid, err)
		return
	}
	text, err := r.OCR.Recognize(ctx, img, ocr.Options{Langs: r.OCRLangs})
	if err != nil {
		r.sendError(cid, err)
		return
	}

	scanID := uuid.Nil
	if text != "" && r.Scans != nil {
		scan := &store.Scan{UserEmail: scanOwner(cid), Text: text, Engine: r.OCR.Name()}
		if err := r.Scans.Save(ctx, scan); err != nil {
			log.Printf("telegram: save scan chat=%d: %v", cid, err)
		} else {
			scanID = scan.ID
		}
	}
	if text != "" {
		r.Sessions.Get(cid).Update(func(st *SessionState) {
			st.Context = text
			st.ScanID = scanID
		})
	}
	r.send(cid, ocr.Summary(text))
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	hc := r.httpc
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, 20<<20))
}

func (r *Router) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return 70 * time.Second
}

func (r *Router) sendReply(chatID int64, rep reply) {
	msg := tgbotapi.NewMessage(chatID, util.Truncate(rep.Text, maxMessageLen, "…"))
	if rep.Markup != nil {
		msg.ReplyMarkup = rep.Markup
	}
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("telegram: send chat=%d: %v", chatID, err)
	}
}

func (r *Router) send(chatID int64, text string) {
	r.sendReply(chatID, reply{Text: text})
}

func (r *Router) sendError(chatID int64, err error) {
	log.Printf("telegram: photo chat=%d: %v", chatID, err)
	r.send(chatID, "⚠️ Could not read the photo: "+err.Error())
}
