package handlers

import (
	"html/template"
	"log"
	"net/http"

	"github.com/lfarias/imc-wellness/internal/bmi"
)

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

type indexData struct {
	MinWeight float64
	MaxWeight float64
	MinHeight float64
	MaxHeight float64
}

// indexHandler serves the single-page calculator form
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	data := indexData{
		MinWeight: bmi.MinWeightKg,
		MaxWeight: bmi.MaxWeightKg,
		MinHeight: bmi.MinHeightM,
		MaxHeight: bmi.MaxHeightM,
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		log.Printf("Error rendering index page: %v", err)
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Calculadora de IMC &amp; Dicas Gemini</title>
<style>
  body { font-family: sans-serif; max-width: 640px; margin: 2rem auto; padding: 0 1rem; color: #222; }
  h1 { font-size: 1.6rem; }
  .inputs { display: flex; gap: 1rem; }
  .inputs label { display: block; margin-bottom: .25rem; font-weight: bold; }
  .inputs input { width: 100%; padding: .4rem; box-sizing: border-box; }
  .inputs > div { flex: 1; }
  button { margin-top: 1rem; padding: .6rem 1.2rem; background: #d33; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
  button:disabled { background: #aaa; }
  #result { margin-top: 1.5rem; }
  .metric { font-size: 2rem; font-weight: bold; }
  .error { color: #c00; }
  .caption { color: #666; font-size: .85rem; margin-top: 2rem; border-top: 1px solid #ddd; padding-top: .5rem; }
</style>
</head>
<body>
<h1>Calculadora de IMC Personalizada</h1>
<p>Use esta ferramenta para calcular seu Índice de Massa Corporal e receber dicas
saudáveis personalizadas, geradas pela Inteligência Artificial do Gemini.</p>

<div class="inputs">
  <div>
    <label for="peso">Seu Peso (kg)</label>
    <input id="peso" type="number" min="{{printf "%.1f" .MinWeight}}" max="{{printf "%.1f" .MaxWeight}}" step="0.1" value="70.0">
  </div>
  <div>
    <label for="altura">Sua Altura (m)</label>
    <input id="altura" type="number" min="{{printf "%.2f" .MinHeight}}" max="{{printf "%.2f" .MaxHeight}}" step="0.01" value="1.75">
  </div>
</div>

<button id="calcular">Calcular IMC e Obter Dicas</button>

<div id="result"></div>

<p class="caption">Nota: O Índice de Massa Corporal (IMC) é apenas uma referência.
Consulte sempre um profissional de saúde para uma avaliação completa.</p>

<script>
const button = document.getElementById('calcular');
const result = document.getElementById('result');

function el(tag, text, cls) {
  const e = document.createElement(tag);
  if (text) e.textContent = text;
  if (cls) e.className = cls;
  return e;
}

button.addEventListener('click', async () => {
  result.replaceChildren();
  button.disabled = true;
  button.textContent = 'Gerando dicas de bem-estar personalizadas...';
  try {
    const resp = await fetch('/api/v1/assess', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({
        weight_kg: parseFloat(document.getElementById('peso').value),
        height_m: parseFloat(document.getElementById('altura').value)
      })
    });
    const data = await resp.json();
    if (!resp.ok) {
      result.appendChild(el('p', data.error, 'error'));
      return;
    }
    result.appendChild(el('h2', 'Seu Resultado de IMC'));
    result.appendChild(el('div', data.bmi.toFixed(2), 'metric'));
    result.appendChild(el('h3', 'Classificação: ' + data.classification));
    result.appendChild(el('h3', 'Dicas Saudáveis do Gemini'));
    result.appendChild(el('p', data.tip));
    if (data.sources && data.sources.length > 0) {
      result.appendChild(el('h3', 'Fontes de Informação (Google Search)'));
      const list = el('ul');
      for (const s of data.sources) {
        const item = el('li');
        const link = el('a', s.title || s.url);
        link.href = s.url;
        link.target = '_blank';
        item.appendChild(link);
        list.appendChild(item);
      }
      result.appendChild(list);
    }
  } catch (err) {
    result.appendChild(el('p', 'Erro de conexão com o servidor: ' + err, 'error'));
  } finally {
    button.disabled = false;
    button.textContent = 'Calcular IMC e Obter Dicas';
  }
});
</script>
</body>
</html>
`
