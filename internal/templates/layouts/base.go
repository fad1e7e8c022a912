package layouts

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/codr1/pickup/internal/api/authz"
	"github.com/codr1/pickup/internal/api/flash"
)

const siteName = "Pickup"

// Page is the chrome shared by every full page render.
type Page struct {
	Title   string
	User    *authz.AuthUser
	Flashes []flash.Message
}

// Base wraps content in the site layout: head, navigation and flashes.
func Base(page Page, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := siteName
		if page.Title != "" {
			title = page.Title + " | " + siteName
		}

		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><script src="https://unpkg.com/htmx.org@1.9.12"></script></head><body hx-boost="true">`, html.EscapeString(title)); err != nil {
			return err
		}
		if err := nav(page.User).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main class="container">`); err != nil {
			return err
		}
		if err := flashes(page.Flashes).Render(ctx, w); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func nav(user *authz.AuthUser) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<nav class="nav"><a class="brand" href="/">%s</a><a href="/games">Find games</a>`, siteName); err != nil {
			return err
		}
		if user != nil {
			_, err := fmt.Fprintf(w, `<a href="/games/create">Host a game</a><span class="nav-user">%s</span><a href="/logout">Log out</a></nav>`, html.EscapeString(user.Email))
			return err
		}
		_, err := io.WriteString(w, `<a href="/login">Log in</a><a href="/signup">Sign up</a></nav>`)
		return err
	})
}

func flashes(messages []flash.Message) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(messages) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, `<div class="flashes">`); err != nil {
			return err
		}
		for _, message := range messages {
			category := message.Category
			if category == "" {
				category = flash.CategoryInfo
			}
			if _, err := fmt.Fprintf(w, `<div class="alert alert-%s" role="alert">%s</div>`, html.EscapeString(category), html.EscapeString(message.Text)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
