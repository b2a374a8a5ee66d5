package tui

// hostPage is the document the terminal host simulates: a store page with
// the anchor the binder looks for first.
const hostPage = `<!DOCTYPE html>
<html>
<head><title>Store</title></head>
<body>
  <div class="page_content">
    <div class="apphub_AppName">Title</div>
    <div class="steamdb-buttons"></div>
  </div>
</body>
</html>`
