package http

import (
	"html/template"

	"github.com/shanehull/digmap/internal/render"
	"github.com/shanehull/digmap/internal/types"
)

const defaultZoom = 13

type tileLayer struct {
	Name        string
	Title       string
	URL         string
	Attribution string
}

var tileLayers = map[string]tileLayer{
	"satellite": {
		Name:        "satellite",
		Title:       "Спутник",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri",
	},
	"osm": {
		Name:        "osm",
		Title:       "Схема",
		URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
	},
	"topo": {
		Name:        "topo",
		Title:       "Рельеф",
		URL:         "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenTopoMap (CC-BY-SA)",
	},
}

var layerOrder = []string{"satellite", "osm", "topo"}

func layerList() []tileLayer {
	layers := make([]tileLayer, 0, len(layerOrder))
	for _, name := range layerOrder {
		layers = append(layers, tileLayers[name])
	}
	return layers
}

type reportView struct {
	Place      string
	Coordinate types.Coordinate
	Weather    *render.Weather
	Region     template.HTML
	Historical template.HTML
}

type pageData struct {
	Center      types.Coordinate
	Zoom        int
	Layer       tileLayer
	Layers      []tileLayer
	OldMap      bool
	OldMapTiles string
	Points      [][2]float64
	Report      *reportView
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="ru">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Карта копателя{{if .Report}}: {{.Report.Place}}{{end}}</title>
    <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
    <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
    <style>
        body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: #f4f1ea; color: #2b2b2b; }
        .layout { display: flex; height: 100vh; }
        #map { flex: 3; }
        .panel { flex: 2; overflow-y: auto; padding: 16px; box-sizing: border-box; max-width: 520px; }
        .panel h2 { margin-top: 0; color: #5b3a1a; }
        .card { background: #fff; border-radius: 8px; padding: 12px 16px; margin-bottom: 12px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
        .weather-temp { font-size: 28px; font-weight: bold; }
        .muted { color: #777; font-size: 12px; }
        form, .row { display: flex; gap: 6px; margin-bottom: 8px; }
        input[type=text] { flex: 1; padding: 6px; }
        #search-results li { cursor: pointer; color: #1a5b8a; }
        #chat-log p { margin: 4px 0; }
    </style>
</head>
<body>
<div class="layout">
    <div id="map"></div>
    <div class="panel">
        <h2>Карта копателя</h2>

        <div class="card">
            <form id="search-form">
                <input type="text" id="search-query" name="query" maxlength="200" placeholder="Название места">
                <button type="submit">Найти</button>
            </form>
            <ul id="search-results"></ul>
        </div>

        <div class="card">
            <div class="row">
                <select id="layer-select">
                {{range .Layers}}<option value="{{.Name}}"{{if eq .Name $.Layer.Name}} selected{{end}}>{{.Title}}</option>
                {{end}}</select>
                {{if $.OldMapTiles}}<label><input type="checkbox" id="old-map"{{if .OldMap}} checked{{end}}> Старая карта</label>{{end}}
            </div>
            <div class="row">
                <button id="save-route">Сохранить маршрут</button>
                <button id="load-route">Загрузить маршрут</button>
            </div>
        </div>

        {{with .Report}}
        <div class="card">
            <h3>{{.Place}}</h3>
            <div class="muted">{{.Coordinate}}</div>
            <div class="row"><button id="email-report" data-lat="{{.Coordinate.Lat}}" data-lon="{{.Coordinate.Lon}}">Отправить отчёт на почту</button></div>
        </div>
        {{with .Weather}}
        <div class="card">
            <h3>Погода</h3>
            <div class="weather-temp">{{.Temperature}}°C</div>
            <p>{{.Description}}</p>
            <div class="muted">Обновлено: {{.UpdatedAt}}</div>
        </div>
        {{end}}
        <div class="card">
            <h3>Анализ местности</h3>
            {{.Region}}
        </div>
        <div class="card">
            <h3>Историческая справка</h3>
            {{.Historical}}
        </div>
        {{end}}

        <div class="card">
            <h3>Спроси копателя</h3>
            <div id="chat-log"></div>
            <form id="chat-form">
                <input type="text" id="chat-message" placeholder="Где искать монеты?">
                <button type="submit">Спросить</button>
            </form>
        </div>
    </div>
</div>
<script>
    const map = L.map('map').setView([{{.Center.Lat}}, {{.Center.Lon}}], {{.Zoom}});
    L.tileLayer({{.Layer.URL}}, { attribution: {{.Layer.Attribution}}, maxZoom: 18 }).addTo(map);
    {{if .OldMap}}L.tileLayer({{.OldMapTiles}}, { opacity: 0.6 }).addTo(map);{{end}}

    const points = {{.Points}};
    points.forEach(p => L.marker(p).addTo(map));
    let route = points.slice();
    let routeLine = L.polyline(route, { color: '#c0392b' }).addTo(map);

    async function post(url, body) {
        const resp = await fetch(url, {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify(body),
        });
        return { ok: resp.ok, data: await resp.json() };
    }

    function analyse(lat, lon) {
        window.location = '/center_map?lat=' + encodeURIComponent(lat) + '&lon=' + encodeURIComponent(lon);
    }

    map.on('click', async e => {
        const { lat, lng } = e.latlng;
        const res = await post('/select_location', { lat: lat, lon: lng });
        if (res.ok) {
            analyse(lat, lng);
        }
    });

    document.getElementById('search-form').addEventListener('submit', async e => {
        e.preventDefault();
        const list = document.getElementById('search-results');
        list.innerHTML = '';
        const res = await post('/search_location', { query: document.getElementById('search-query').value });
        if (!res.ok) {
            const li = document.createElement('li');
            li.textContent = res.data.message;
            list.appendChild(li);
            return;
        }
        res.data.locations.forEach(loc => {
            const li = document.createElement('li');
            li.textContent = loc.display_name;
            li.addEventListener('click', () => map.setView([loc.lat, loc.lon], 14));
            list.appendChild(li);
        });
    });

    document.getElementById('layer-select').addEventListener('change', async e => {
        const res = await post('/change_map_layer', { layer: e.target.value });
        if (res.ok) {
            window.location.reload();
        }
    });

    const oldMap = document.getElementById('old-map');
    if (oldMap) {
        oldMap.addEventListener('change', async e => {
            const res = await post('/toggle_old_map', { old_map: e.target.checked });
            if (res.ok) {
                window.location.reload();
            }
        });
    }

    document.getElementById('save-route').addEventListener('click', () => post('/save_route', { route: route }));
    document.getElementById('load-route').addEventListener('click', async () => {
        const resp = await fetch('/load_route');
        route = await resp.json();
        routeLine.setLatLngs(route);
        if (route.length > 0) {
            map.fitBounds(routeLine.getBounds());
        }
    });

    const emailBtn = document.getElementById('email-report');
    if (emailBtn) {
        emailBtn.addEventListener('click', async () => {
            const res = await post('/email_report', { lat: emailBtn.dataset.lat, lon: emailBtn.dataset.lon });
            emailBtn.textContent = res.ok ? 'Отчёт отправлен' : res.data.message;
        });
    }

    document.getElementById('chat-form').addEventListener('submit', async e => {
        e.preventDefault();
        const input = document.getElementById('chat-message');
        const log = document.getElementById('chat-log');
        const q = document.createElement('p');
        q.textContent = '> ' + input.value;
        log.appendChild(q);
        const res = await post('/chat', { message: input.value });
        const a = document.createElement('p');
        a.textContent = res.data.response;
        log.appendChild(a);
        input.value = '';
    });
</script>
</body>
</html>
`
