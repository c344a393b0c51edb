package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// PublicConfig is the config object the page-side surface exposes. It is
// the subset of tracker.Config a page may read; the API base URL and the
// internal thresholds stay on the host.
type PublicConfig struct {
	Repo           string `json:"repo"`
	BatchSize      int    `json:"batchSize"`
	SubmitInterval int    `json:"submitInterval"`
	IssueLabel     string `json:"issueLabel"`
}

// bridgeScript reports page lifecycle events to the host and defines
// window.docsVisitTracker. __CONFIG__ is replaced with PublicConfig JSON.
const bridgeScript = `(function () {
  'use strict';
  if (window.docsVisitTracker) return;

  var BASE = '/_tracker';
  var CONFIG = __CONFIG__;

  function page() {
    return {
      host: location.hostname,
      path: location.pathname,
      referrer: document.referrer,
      userAgent: navigator.userAgent,
      viewportWidth: window.innerWidth,
      doNotTrack: navigator.doNotTrack === '1' || window.doNotTrack === '1'
    };
  }

  function send(kind) {
    var body = JSON.stringify({ kind: kind, page: page() });
    if (kind === 'hidden' && navigator.sendBeacon) {
      navigator.sendBeacon(BASE + '/events', new Blob([body], { type: 'application/json' }));
      return Promise.resolve();
    }
    return fetch(BASE + '/events', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: body,
      keepalive: true
    }).catch(function (e) {
      console.debug('Tracker event failed:', e);
    });
  }

  function call(method, path, body) {
    var init = { method: method, headers: { 'Accept': 'application/json' } };
    if (body !== undefined) {
      init.headers['Content-Type'] = 'application/json';
      init.body = JSON.stringify(body);
    }
    return fetch(BASE + path, init).then(function (r) { return r.json(); });
  }

  function init() {
    send('load');

    var lastPath = location.pathname;
    function checkPath() {
      if (location.pathname !== lastPath) {
        lastPath = location.pathname;
        send('navigate');
      }
    }
    if (document.body) {
      new MutationObserver(checkPath).observe(document.body, { childList: true, subtree: false });
    }
    window.addEventListener('popstate', checkPath);

    document.addEventListener('visibilitychange', function () {
      if (document.visibilityState === 'hidden') {
        send('hidden');
      }
    });
  }

  window.docsVisitTracker = {
    getVisits: function () {
      return call('GET', '/visits').then(function (r) { return r.visits; });
    },
    clearVisits: function () {
      return call('DELETE', '/visits');
    },
    setVisits: function (visits) {
      return call('PUT', '/visits', visits);
    },
    submit: function () {
      return call('POST', '/submit').then(function (r) { return r.submitted; });
    },
    page: page,
    config: CONFIG
  };

  if (document.readyState === 'complete' || document.readyState === 'interactive') {
    init();
  } else {
    document.addEventListener('DOMContentLoaded', init);
  }
})();
`

// RenderBridgeScript returns the bridge script with cfg embedded.
func RenderBridgeScript(cfg PublicConfig) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return strings.Replace(bridgeScript, "__CONFIG__", string(data), 1), nil
}

// HandleBridgeScript serves the bridge script for tr's configuration.
func HandleBridgeScript(tr Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := tr.Config()
		script, err := RenderBridgeScript(PublicConfig{
			Repo:           cfg.Repo,
			BatchSize:      cfg.BatchSize,
			SubmitInterval: cfg.SubmitIntervalMs,
			IssueLabel:     cfg.IssueLabel,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(script))
	}
}
