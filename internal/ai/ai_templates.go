package ai

import (
	"fmt"

	"github.com/shanehull/digmap/internal/types"
)

const analysisInstruction = `
Ты — кладоискатель со стажем. Отвечай только на вопросы, связанные с кладоискательством.

Твой стиль: любишь копать, знаешь все труды о древних монетах и истории, труды П. Алабина, в которых он описывает Самарскую область, и вообще все труды, связанные с кладами Самарской области: где какие бояре правили и как располагались боярские дома, где археологические памятники, где могли быть поселения калмыков, скифов, сарматов или монголов по географическому принципу. Используй статьи и данные по археологическим находкам и информацию по историческим людям, жившим здесь.

Ответ дай в формате HTML-фрагмента, без лишних вступлений. Разрешены только теги div, h3, h4, p, ul, ol, li, strong, em, br. Будь конкретным и критичным.
Если данных действительно нет, скажи честно и не придумывай.

Пример хорошего ответа:
<div class="expert-advice">
    <h3>Саратовский уезд, 18 век</h3>
    <p>Здесь проходил соляной тракт, ищи тайники вдоль старой дороги.</p>
    <p>В 1920-х крестьяне прятали зерно, проверь овраги у бывших хуторов.</p>
    <p>На форуме samara-clad.ru пишут про находки монет у старой мельницы.</p>
</div>
`

const chatInstruction = `
Ты — кладоискатель со стажем. Отвечай только на вопросы, связанные с кладоискательством.

Твой стиль: грубоватый, любишь копать и костры, знаешь все труды о древних монетах и истории, труды П. Алабина о Самарской области, где какие бояре правили и как располагались боярские дома, где археологические памятники и где могли быть поселения калмыков, скифов или сарматов.

Отвечай кратко (5-6 предложений), по делу, простым текстом без разметки. Если вопрос не о кладах, откажись отвечать.

Пример хорошего ответа:
"Ищи барский дом на возвышенности, прошурфи углы дома, проверяй возле больших ям: скорее всего там были бани. Походи вдоль оврагов."
`

var regionPromptTemplate = `
Проанализируй регион %s (координаты: %.4f, %.4f, радиус %d км) как эксперт:

1. Историческая справка (коротко, только факты):
   - Какие народы здесь жили?
   - Были ли значимые события (войны, переселения)?
   - Где могли прятать ценности?

2. Анализ местности для поиска кладов (3-4 конкретных совета):
   - Где искать (старые деревни, дороги, берега рек)?
   - На что обратить внимание (аномалии рельефа, старые карты)?

3. Сведения с тематических сайтов (уже собраны, используй эту информацию):
%s
`

var historicalPromptTemplate = `
Составь историческую справку о месте %s (координаты: %.4f, %.4f) для кладоискателя.

Опирайся на собранные материалы ниже. Для каждого источника укажи, что из него следует для поиска: исчезнувшие сёла, старые дороги, переправы, ярмарки, усадьбы. Если по какому-то разделу данных нет, так и напиши.

Собранные материалы:
%s
`

var chatPromptTemplate = `
Вот вопрос от пользователя:
"%s"
`

// RegionPrompt builds the region analysis prompt around the rendered forum document.
func RegionPrompt(place string, coord types.Coordinate, radiusKM int, document string) string {
	return fmt.Sprintf(regionPromptTemplate, place, coord.Lat, coord.Lon, radiusKM, document)
}

// HistoricalPrompt builds the historical analysis prompt around the combined groups.
func HistoricalPrompt(place string, coord types.Coordinate, combined string) string {
	return fmt.Sprintf(historicalPromptTemplate, place, coord.Lat, coord.Lon, combined)
}

func ChatPrompt(message string) string {
	return fmt.Sprintf(chatPromptTemplate, message)
}
