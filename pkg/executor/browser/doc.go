// Package browser hosts the panel in a real browser page driven by
// Playwright.
//
// The executor launches Chromium, opens the run file's address and binds a
// binder.Manager to the live page. The page side is a small init script
// installed on every navigation:
//
//   - anchors are looked up with document.querySelector and identified by
//     a key held in a page-side WeakMap, so a replaced element gets a new key
//   - a debounced MutationObserver calls back into Go on every DOM change
//   - clicks on injected controls and overlay buttons are forwarded through
//     exposed functions
//
// Controls and overlays are rendered to markup in Go (package dom) and
// inserted with Evaluate. The page never decides what to draw.
//
// Example run file:
//
//	url: https://store.steampowered.com/app/730/
//	headless: false
//	viewport:
//	  width: 1280
//	  height: 900
//	timeout: 30s
package browser
