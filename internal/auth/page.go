package auth

import "net/http"

// donePage is shown once the callback has been handled.
const donePage = `<!doctype html>
<html>
<body>
<h2>Puter auth complete</h2>
<p>You may now close this tab and return to your terminal.</p>
</body>
</html>`

// forwarderPage re-submits a fragment-carried token as a query
// parameter. The forwarded=1 marker keeps a tokenless retry from
// looping back here.
const forwarderPage = `<!doctype html>
<html>
<body>
<p>Completing sign-in&hellip;</p>
<script>
(function () {
  var fragment = new URLSearchParams(window.location.hash.replace(/^#/, ""));
  var params = new URLSearchParams();
  params.set("forwarded", "1");
  var token = fragment.get("token");
  if (token) {
    params.set("token", token);
  }
  window.location.replace(window.location.pathname + "?" + params.toString());
})();
</script>
</body>
</html>`

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
