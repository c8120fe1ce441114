package view

const resultsHTML = `<div id="comparison-results" class="comparison-results" data-from="{{.FromVersion}}" data-to="{{.ToVersion}}" data-offset="{{scrollOffset}}" data-duration="{{ms revealDuration}}">
<h2 id="comparison-header">{{.Header}}</h2>
{{- if .Notice}}
<div class="alert alert-info notice">{{.Notice}}</div>
{{- else}}
<div class="results-grid">
<nav id="connector-list" class="list-group">
{{- range .Entries}}
<a href="#{{.Anchor}}" class="list-group-item connector-link" data-anchor="{{.Anchor}}" data-offset="{{.Target.Offset}}" data-duration="{{ms .Target.Duration}}"{{if .Hidden}} hidden{{end}}>{{.Name}} <span class="badge badge-primary total-badge">{{.Total}}</span>{{if .HasBreaking}} <span class="badge badge-danger breaking-badge">{{.Breaking}}</span>{{end}}</a>
{{- end}}
</nav>
<div id="connector-details">
{{- range .Details}}
<section class="connector-section" id="{{.Anchor}}">
<div class="card connector-card">
<div class="card-header">
<h3 class="connector-title">{{.Title}}</h3>
<span class="badge badge-danger breaking-count">{{.BreakingCount}} Breaking</span>
<span class="badge badge-success feature-count">{{.FeatureCount}} Features</span>
</div>
<div class="card-body collapse{{if not .Collapsed}} show{{end}}">
{{- with .Breaking}}
<h4 class="text-danger group-title group-breaking">Breaking Changes</h4>
<div class="breaking-changes">
{{- range .}}
<div class="change-item breaking"><span class="version-pill">{{.Tag}}</span><p>{{.Description}}</p></div>
{{- end}}
</div>
{{- end}}
{{- with .Features}}
<h4 class="text-success group-title group-features">New Features</h4>
<div class="new-features">
{{- range .}}
<div class="change-item feature"><span class="version-pill">{{.Tag}}</span><p>{{.Description}}</p></div>
{{- end}}
</div>
{{- end}}
{{- if .Notice}}
<div class="alert alert-info notice">{{.Notice}}</div>
{{- end}}
</div>
</div>
</section>
{{- end}}
</div>
</div>
{{- end}}
</div>
`

const pageHTML = `<!doctype html>
<html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Ecosystem}} Breaking Changes</title>
<style>
body{margin:0;font:14px/1.45 ui-sans-serif,system-ui,sans-serif;background:#f4f6f8;color:#1f2937}
.top{padding:12px 16px;background:#0f172a;color:#fff}
.wrap{max-width:1200px;margin:0 auto;padding:16px}
form{display:flex;gap:12px;align-items:end;flex-wrap:wrap;background:#fff;padding:12px;border-radius:10px}
label{display:flex;flex-direction:column;font-weight:600;gap:4px}
select,input{padding:6px 10px;border:1px solid #cbd5e1;border-radius:8px}
button{background:#2563eb;color:#fff;border:none;border-radius:8px;padding:7px 12px;cursor:pointer}
button.secondary{background:#e2e8f0;color:#0f172a}
.results-grid{display:grid;grid-template-columns:280px 1fr;gap:16px}
.list-group{display:flex;flex-direction:column;gap:4px;position:sticky;top:12px;align-self:start}
.list-group-item{display:flex;gap:6px;align-items:center;padding:8px 10px;background:#fff;border:1px solid #e5e7eb;border-radius:8px;color:#1f2937;text-decoration:none}
.list-group-item[hidden]{display:none}
.badge{display:inline-block;border-radius:999px;padding:1px 8px;font-size:12px;color:#fff}
.badge-primary{background:#2563eb;margin-left:auto}.badge-danger{background:#dc2626}.badge-success{background:#16a34a}
.card{background:#fff;border:1px solid #e5e7eb;border-radius:10px;margin-bottom:16px}
.card-header{display:flex;gap:8px;align-items:center;padding:10px 14px;border-bottom:1px solid #eef2f7;cursor:pointer}
.card-header h3{margin:0 auto 0 0}
.card-body{padding:10px 14px}
.collapse{display:none}.collapse.show{display:block}
.change-item{display:flex;gap:8px;align-items:baseline;padding:4px 0;border-bottom:1px dashed #eef2f7}
.change-item p{margin:0}
.version-pill{background:#64748b;color:#fff;border-radius:999px;padding:1px 7px;font-size:11px}
.text-danger{color:#b91c1c}.text-success{color:#15803d}
.alert{padding:10px 14px;border-radius:8px;background:#e0f2fe;color:#075985}
.alert-danger{background:#fee2e2;color:#991b1b}
.toolbar{display:flex;gap:8px;margin:16px 0}
#loadingOverlay{position:fixed;inset:0;background:rgba(15,23,42,.45);display:flex;align-items:center;justify-content:center;color:#fff;font-size:18px}
#loadingOverlay[hidden]{display:none}
</style></head>
<body>
<div class="top"><strong>{{.Ecosystem}} Breaking Changes</strong></div>
<div class="wrap">
<form id="comparisonForm" method="get" action="/compare">
<label>From version
<select id="fromVersion" name="fromVersion">
<option value="">Select version</option>
{{- range .Versions}}
<option value="{{.}}"{{if eq . $.FromVersion}} selected{{end}}>{{.}}</option>
{{- end}}
</select></label>
<label>To version
<select id="toVersion" name="toVersion">
<option value="">Select version</option>
{{- range .Versions}}
<option value="{{.}}"{{if eq . $.ToVersion}} selected{{end}}>{{.}}</option>
{{- end}}
</select></label>
<button type="submit">Compare</button>
</form>
<div class="toolbar">
<input id="connector-search" type="search" placeholder="Search connectors" list="known-connectors">
<datalist id="known-connectors">{{range .Connectors}}<option value="{{.}}">{{end}}</datalist>
<button type="button" class="secondary" id="expand-all">Expand all</button>
<button type="button" class="secondary" id="collapse-all">Collapse all</button>
</div>
{{- if .Error}}
<div class="alert alert-danger" id="comparison-error">{{.Error}}</div>
{{- end}}
<div id="results-container">{{with .Results}}{{template "results" .}}{{end}}</div>
</div>
<div id="loadingOverlay" hidden>Comparing versions&hellip;</div>
<script>
(function(){
  var latest = 0;
  var byId = function(id){ return document.getElementById(id); };

  function animateScroll(top, duration){
    var start = window.pageYOffset, delta = top - start, t0 = null;
    if (duration <= 0) { window.scrollTo(0, top); return; }
    function step(ts){
      if (t0 === null) t0 = ts;
      var k = Math.min(1, (ts - t0) / duration);
      window.scrollTo(0, start + delta * (k < 0.5 ? 2*k*k : -1 + (4 - 2*k) * k));
      if (k < 1) window.requestAnimationFrame(step);
    }
    window.requestAnimationFrame(step);
  }

  function scrollToElement(el, offset, duration){
    if (!el) return;
    var top = el.getBoundingClientRect().top + window.pageYOffset - offset;
    animateScroll(top, duration);
  }

  function applyFilter(){
    var q = byId('connector-search').value.toLowerCase();
    document.querySelectorAll('.connector-link').forEach(function(a){
      a.hidden = a.textContent.toLowerCase().indexOf(q) === -1;
    });
  }

  document.addEventListener('click', function(e){
    var link = e.target.closest('.connector-link');
    if (link) {
      e.preventDefault();
      scrollToElement(byId(link.dataset.anchor), +link.dataset.offset, +link.dataset.duration);
      return;
    }
    var header = e.target.closest('.connector-card .card-header');
    if (header) header.nextElementSibling.classList.toggle('show');
  });

  byId('connector-search').addEventListener('input', applyFilter);
  byId('expand-all').addEventListener('click', function(){
    document.querySelectorAll('.collapse').forEach(function(el){ el.classList.add('show'); });
  });
  byId('collapse-all').addEventListener('click', function(){
    document.querySelectorAll('.collapse').forEach(function(el){ el.classList.remove('show'); });
  });

  byId('comparisonForm').addEventListener('submit', function(e){
    e.preventDefault();
    var from = byId('fromVersion').value, to = byId('toVersion').value;
    if (!from || !to) { alert('Please select both versions to compare'); return; }

    var token = ++latest;
    var overlay = byId('loadingOverlay');
    var container = byId('results-container');
    overlay.hidden = false;
    container.innerHTML = '';

    var params = new URLSearchParams({fromVersion: from, toVersion: to});
    fetch('/compare/results?' + params.toString())
      .then(function(resp){
        if (resp.ok) return resp.text();
        return resp.json().catch(function(){ return {}; }).then(function(body){
          throw new Error(body.error || resp.statusText || ('HTTP ' + resp.status));
        });
      })
      .then(function(html){
        if (token !== latest) return;
        container.innerHTML = html;
        applyFilter();
        var results = byId('comparison-results');
        scrollToElement(results, +results.dataset.offset, +results.dataset.duration);
      })
      .catch(function(err){
        if (token !== latest) return;
        alert('Error comparing versions: ' + err.message);
      })
      .finally(function(){
        if (token === latest) overlay.hidden = true;
      });
  });
})();
</script>
</body></html>
`
