package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// registrationPageHTML is the landing page behind invitation deep links. It
// reads ?invitation=<token>&trip=<id>, shows who invited whom and forwards
// the token with the register or login call so the invitation is redeemed.
var registrationPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>Join a trip</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: linear-gradient(135deg,#0f766e,#1d4ed8); color: #fff; min-height: 100vh; display: flex; flex-direction: column; }
header { padding: 48px 20px 16px; text-align: center; }
main { flex: 1; display: flex; justify-content: center; align-items: flex-start; padding: 20px; }
.card { background: #fff; color: #333; padding: 24px; border-radius: 8px; width: 90%; max-width: 420px; box-shadow: 0 10px 40px rgba(0,0,0,0.2); }
.tabs button { background: none; border: none; font-size: 16px; padding: 8px 12px; cursor: pointer; color: #555; }
.tabs button.active { border-bottom: 2px solid #1d4ed8; color: #1d4ed8; }
input { width: 100%; padding: 10px; margin: 8px 0; border: 1px solid #ccc; border-radius: 4px; box-sizing: border-box; }
button[type=submit] { width: 100%; padding: 12px; margin-top: 8px; border: none; border-radius: 4px; background: #1d4ed8; color: #fff; font-size: 16px; cursor: pointer; }
#notice { min-height: 1.5em; }
footer { text-align: center; padding: 20px; font-size: 14px; opacity: 0.8; }
</style>
</head>
<body>
<header>
  <h1 id="headline">Plan your next trip together</h1>
  <p id="notice"></p>
</header>
<main>
  <div class="card">
    <div class="tabs">
      <button id="tab-register" class="active" onclick="show('register')">Create account</button>
      <button id="tab-login" onclick="show('login')">Sign in</button>
    </div>
    <form id="form" onsubmit="return submitForm(event)">
      <input type="text" name="full_name" id="full_name" placeholder="Full name" />
      <input type="email" name="email" id="email" placeholder="Email" required />
      <input type="password" name="password" placeholder="Password" required />
      <button type="submit" id="submit">Create account</button>
    </form>
  </div>
</main>
<footer>Trips are shared by email; your access is ready as soon as you sign in.</footer>
<script>
const params = new URLSearchParams(window.location.search);
const invitationToken = params.get('invitation') || '';
let mode = 'register';

function show(next) {
  mode = next;
  document.getElementById('tab-register').classList.toggle('active', next === 'register');
  document.getElementById('tab-login').classList.toggle('active', next === 'login');
  document.getElementById('full_name').style.display = next === 'register' ? '' : 'none';
  document.getElementById('submit').textContent = next === 'register' ? 'Create account' : 'Sign in';
}

async function loadInvitation() {
  if (!invitationToken) { return; }
  const response = await fetch('/api/v1/invitations/' + encodeURIComponent(invitationToken));
  if (!response.ok) {
    document.getElementById('notice').textContent = 'This invitation has expired or was already used.';
    return;
  }
  const data = await response.json();
  const title = data.trip_title || 'a trip';
  document.getElementById('headline').textContent = 'You have been invited to ' + title;
  document.getElementById('notice').textContent = 'Invited by ' + data.invitation.invited_by;
  document.getElementById('email').value = data.invitation.email;
}

async function submitForm(event) {
  event.preventDefault();
  const body = Object.fromEntries(new FormData(event.target).entries());
  if (mode === 'login') { delete body.full_name; }
  if (invitationToken) { body.invitation_token = invitationToken; }
  const response = await fetch('/api/v1/auth/' + mode, {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify(body)
  });
  const data = await response.json();
  if (response.ok) {
    localStorage.setItem('trip_token', data.token);
    window.location.href = '/home';
  } else {
    document.getElementById('notice').textContent = data.error || 'Something went wrong';
  }
}

loadInvitation();
</script>
</body>
</html>`

// RegisterPages serves the invitation landing page at /<registrationPath>
// and sends /home to the front-end when one is configured.
func RegisterPages(e *echo.Echo, registrationPath, homeURL string) {
	registrationPath = strings.Trim(strings.TrimSpace(registrationPath), "/")
	if registrationPath == "" {
		registrationPath = "register"
	}
	e.GET("/"+registrationPath, func(c echo.Context) error {
		return c.HTML(http.StatusOK, registrationPageHTML)
	})

	e.GET("/home", func(c echo.Context) error {
		if homeURL != "" {
			return c.Redirect(http.StatusTemporaryRedirect, homeURL)
		}
		return c.HTML(http.StatusOK, "<h1>Welcome</h1><p>Your trips are waiting in the app.</p>")
	})
}
