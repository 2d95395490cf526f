package main

import (
	"fmt"
	"net/http"

	sessauth "github.com/sessauth/sessauth"
	"github.com/sessauth/sessauth/middleware"
)

const loggedInHeader = `
	<link rel="stylesheet" href="/public/main.css">

	<script>
		async function logout(event) {
			event.preventDefault();

			await fetch("/api/logout", {
				method: "POST",
			});

			location.reload();
		}
	</script>

	<form onsubmit="logout(event)">
		<button class="button">Logout</button>
	</form>
`

const loggedOutHeader = `
	<div><a href="/login">Login</a></div>
`

const endpointList = `
	<h1>Endpoints</h1>
	<ul>
		<li><b>get /</b>: returns this page</li>
		<li><b>get /login</b>: returns a page where a user can log in</li>

		<li><b>post /api/login</b>: logs a user in</li>
		<li><b>post /api/logout</b>: logs a user out</li>

		<li><b><a href="/api/seen-users">get /api/seen-users</a></b>: lists the users seen since the server started (admin only)</li>
		<li><b><a href="/api/seen-users/0">get /api/seen-users/{index}</a></b>: shows the user at the given position (admin only)</li>

		<li><b><a href="/api/create-uuid-v4">get /api/create-uuid-v4</a></b>: generates and returns a uuid value (v4)</li>
		<li><b><a href="/api/echo/foo/and/bar">get /api/echo/{this}/and/{that}</a></b>: returns this and that in a json object</li>
		<li><b><a href="/api/echo-path">get /api/echo-path</a></b>: returns the path of the request in a json object</li>
		<li><b><a href="/api/echo-query-params?key0=value0&key1=value1">get /api/echo-query-params</a></b>: returns all query params</li>
		<li><b><a href="/api/echo-parsed-query-params?uuid=88292365-1919-4e00-b406-6988740f395c&list=value0&list=value1">get /api/echo-parsed-query-params</a></b>: parses uuid and list query params and echoes them</li>
		<li><b><a href="/api/echo-uuid-in-path/88292365-1919-4e00-b406-6988740f395c">get /api/echo-uuid-in-path/{uuid}</a></b>: returns the uuid in the path</li>

		<li><b><a href="/metrics">get /metrics</a></b>: engine counters in Prometheus format</li>
	</ul>
`

const loginForm = `
	<link rel="stylesheet" href="/public/main.css">

	<script>
		async function login(event) {
			event.preventDefault();

			let loginname = document.getElementById("loginname").value;
			let password = document.getElementById("password").value;

			await fetch("/api/login", {
				method: "POST",
				headers: {
					'Content-Type': 'application/json',
				},
				body: JSON.stringify({
					loginname,
					password,
				}),
			});

			location = "/";
		}
	</script>

	<h1>Login</h1>

	<form onsubmit="login(event)">
		<label for="loginname">Loginname</label>
		<input type="username" id="loginname" />

		<label for="password">Password</label>
		<input type="password" id="password" />

		<button class="button">Login</button>
	</form>
`

func (s *server) indexPage(w http.ResponseWriter, r *http.Request) {
	header := loggedOutHeader
	if _, ok := s.pageIdentity(r); ok {
		header = loggedInHeader
	}

	writeHTML(w, header+endpointList)
}

func (s *server) loginPage(w http.ResponseWriter, r *http.Request) {
	body := loginForm
	if _, ok := s.pageIdentity(r); ok {
		body = `You are already logged in!`
	}

	writeHTML(w, body)
}

// pageIdentity is the optional flavor of the guard: pages render for
// anonymous visitors too, they just vary their content for known ones.
func (s *server) pageIdentity(r *http.Request) (sessauth.LoginInfo, bool) {
	cookie, err := r.Cookie(middleware.AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return sessauth.LoginInfo{}, false
	}

	info, err := s.engine.Verify(middleware.RequestContext(r), cookie.Value)
	if err != nil {
		return sessauth.LoginInfo{}, false
	}
	return info, true
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html>\n<body>\n%s\n</body>\n</html>\n", body)
}
