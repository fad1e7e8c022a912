// Package auth renders the signup and login forms.
package auth

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

func SignupForm(emailDomain string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<section class="auth"><h1>Create an account</h1><form method="post" action="/signup"><label>Email <input type="email" name="email" placeholder="netid@%s" required autocomplete="email"></label><label>Password <input type="password" name="password" required autocomplete="new-password"></label><button type="submit">Sign up</button></form><p>Already registered? <a href="/login">Log in</a></p></section>`,
			html.EscapeString(emailDomain))
		return err
	})
}

func LoginForm() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<section class="auth"><h1>Log in</h1><form method="post" action="/login"><label>Email <input type="email" name="email" required autocomplete="email"></label><label>Password <input type="password" name="password" required autocomplete="current-password"></label><button type="submit">Log in</button></form><p>New here? <a href="/signup">Create an account</a></p></section>`)
		return err
	})
}
