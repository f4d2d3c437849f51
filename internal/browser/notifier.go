package browser

import (
	"fmt"

	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/monitor"

	"github.com/ysmood/gson"
)

const bindingName = "__outlookExtractorSignal"

// observerScript installs a MutationObserver and a click listener reporting to the binding.
// It is also registered for new documents, where it waits for the body.
func observerScript(binding string) string {
	return fmt.Sprintf(`(() => {
  const name = %[1]q;
  const detach = name + "Detach";
  const send = (kind) => {
    const fn = window[name];
    if (typeof fn === "function") fn(kind);
  };
  const install = () => {
    if (window[detach]) return;
    const observer = new MutationObserver((mutations) => {
      if (mutations.some((m) => m.addedNodes.length > 0)) send("mutation");
    });
    observer.observe(document.body, { childList: true, subtree: true });
    const onClick = () => send("click");
    document.addEventListener("click", onClick, true);
    window[detach] = () => {
      observer.disconnect();
      document.removeEventListener("click", onClick, true);
      delete window[detach];
    };
  };
  if (document.body) install();
  else document.addEventListener("DOMContentLoaded", install);
})();`, binding)
}

func detachScript(binding string) string {
	return fmt.Sprintf(`() => {
  const detach = window[%[1]q + "Detach"];
  if (detach) detach();
}`, binding)
}

// parseSignal maps a binding payload to a signal; anything but "click" counts as a mutation
func parseSignal(payload string) monitor.Signal {
	if payload == "click" {
		return monitor.SignalClick
	}
	return monitor.SignalMutation
}

// Subscribe implements monitor.Notifier. Signals arrive on Rod's event goroutine.
func (s *Session) Subscribe(handler func(monitor.Signal)) (func(), error) {
	stopBinding, err := s.page.Expose(bindingName, func(payload gson.JSON) (interface{}, error) {
		handler(parseSignal(payload.Str()))
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("expose binding: %w", err)
	}

	script := observerScript(bindingName)
	removeOnNewDocument, err := s.page.EvalOnNewDocument(script)
	if err != nil {
		_ = stopBinding()
		return nil, fmt.Errorf("register observer: %w", err)
	}

	if _, err := s.page.Eval("() => {" + script + "}"); err != nil {
		_ = removeOnNewDocument()
		_ = stopBinding()
		return nil, fmt.Errorf("install observer: %w", err)
	}

	unsubscribe := func() {
		if _, err := s.page.Eval(detachScript(bindingName)); err != nil {
			logging.Log.WithError(err).Warn("failed to detach page observer")
		}
		if err := removeOnNewDocument(); err != nil {
			logging.Log.WithError(err).Warn("failed to unregister page observer")
		}
		if err := stopBinding(); err != nil {
			logging.Log.WithError(err).Warn("failed to remove page binding")
		}
	}
	return unsubscribe, nil
}
