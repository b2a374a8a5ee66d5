package browser

// Names of the functions exposed to the page.
const (
	bindingMutated = "titlepanelMutated"
	bindingClick   = "titlepanelClick"
	bindingOverlay = "titlepanelOverlay"
)

// initScript runs before any page script on every navigation. It installs
// window.__titlepanel with the helpers the Go side evaluates.
const initScript = `(() => {
  if (window.__titlepanel) return;

  const keys = new WeakMap();
  const anchors = new Map();
  const container = 'div.titlepanel';

  const tp = {
    find(selectors, fresh) {
      for (const sel of selectors) {
        let el = null;
        try { el = document.querySelector(sel); } catch (e) { continue; }
        if (!el) continue;
        if (!keys.has(el)) {
          keys.set(el, fresh);
          anchors.set(fresh, new WeakRef(el));
        }
        return keys.get(el);
      }
      return null;
    },
    anchor(key) {
      const ref = anchors.get(key);
      const el = ref && ref.deref();
      if (!el || !el.isConnected) {
        anchors.delete(key);
        return null;
      }
      return el;
    },
    hasControls(key) {
      const el = tp.anchor(key);
      return !!(el && el.querySelector(container + ' [data-titlepanel-action="restart"]'));
    },
    clear(key) {
      const el = tp.anchor(key);
      if (!el) return false;
      el.querySelectorAll(':scope > ' + container).forEach((n) => n.remove());
      return true;
    },
    render(key, markup) {
      if (!tp.clear(key)) return false;
      tp.anchor(key).insertAdjacentHTML('beforeend', markup);
      return true;
    },
    showOverlay(id, markup) {
      const old = document.querySelector('[data-titlepanel-overlay="' + id + '"]');
      if (old) {
        old.outerHTML = markup;
      } else {
        document.body.insertAdjacentHTML('beforeend', markup);
      }
    },
    closeOverlay(id) {
      const el = document.querySelector('[data-titlepanel-overlay="' + id + '"]');
      if (el) el.remove();
    },
  };
  window.__titlepanel = tp;

  let pending = false;
  const observer = new MutationObserver(() => {
    if (pending) return;
    pending = true;
    setTimeout(() => {
      pending = false;
      if (window.` + bindingMutated + `) window.` + bindingMutated + `();
    }, 100);
  });
  const observe = () => observer.observe(document.documentElement, { childList: true, subtree: true });
  if (document.documentElement) {
    observe();
  } else {
    document.addEventListener('DOMContentLoaded', observe);
  }

  document.addEventListener('click', (e) => {
    const target = e.target instanceof Element ? e.target : null;
    if (!target) return;

    const choice = target.closest('[data-titlepanel-choice]');
    if (choice) {
      e.preventDefault();
      const box = choice.closest('[data-titlepanel-overlay]');
      const user = box.querySelector('input[name="username"]');
      const pass = box.querySelector('input[name="password"]');
      window.` + bindingOverlay + `(box.dataset.titlepanelOverlay, choice.dataset.titlepanelChoice,
        user ? user.value : '', pass ? pass.value : '');
      return;
    }

    const control = target.closest(container + ' [data-titlepanel-action]');
    if (!control) return;
    e.preventDefault();
    if (control.getAttribute('aria-disabled') === 'true') return;
    const item = Number(control.closest(container).dataset.titlepanelItem);
    window.` + bindingClick + `(item, control.dataset.titlepanelAction);
  }, true);
})();`
