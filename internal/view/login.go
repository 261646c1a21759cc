// Package view renders the static pages served next to the API.
package view

import "io"

// loginHTML is the complete login document. The form has no action, method
// or submit handler, and its inputs are uncontrolled.
const loginHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>OCall</title>
  <style>
    :root { --bg:#101418; --panel:#181f26; --accent:#f59e0b; --muted:#9ca3af; --line:rgba(255,255,255,0.1); }
    body { margin:0; font-family: "Inter", "Segoe UI", sans-serif; background:var(--bg); color:#e5e7eb; }
    .login-page { display:flex; flex-direction:column; align-items:center; justify-content:center; min-height:100vh; padding:24px; box-sizing:border-box; }
    h1 { margin:0 0 18px; font-size:32px; color:var(--accent); letter-spacing:0.5px; }
    .login-form { background:var(--panel); border:1px solid var(--line); border-radius:14px; padding:28px 32px; max-width:380px; width:100%; box-sizing:border-box; }
    form { display:grid; gap:10px; }
    label { font-size:13px; color:var(--muted); text-transform:uppercase; letter-spacing:0.3px; }
    input { display:block; width:100%; box-sizing:border-box; background:var(--bg); border:1px solid var(--line); color:#e5e7eb; border-radius:8px; padding:10px 12px; font-size:15px; }
  </style>
</head>
<body>
  <div class="login-page">
    <h1>OCall</h1>
    <div class="login-form">
      <form>
        <label>Username</label>
        <input name="username" type="text">
        <label>Password</label>
        <input name="password" type="password">
      </form>
    </div>
  </div>
</body>
</html>
`

// RenderLogin writes the login page. It only fails when w does.
func RenderLogin(w io.Writer) error {
	_, err := io.WriteString(w, loginHTML)
	return err
}

func LoginPage() []byte {
	return []byte(loginHTML)
}
