package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared by every presentation.
const (
	KeyTitle            = "ui.title"
	KeyNamePrompt       = "ui.name_prompt"
	KeyStart            = "ui.start"
	KeyScore            = "ui.score"
	KeyLevel            = "ui.level"
	KeyTime             = "ui.time"
	KeyAnswer           = "ui.answer"
	KeyGameOver         = "ui.game_over"
	KeyFinalScore       = "ui.final_score"
	KeyReachedLevel     = "ui.reached_level"
	KeyPlayAgain        = "ui.play_again"
	KeyLeaderboard      = "ui.leaderboard"
	KeyLeaderboardEmpty = "ui.leaderboard_empty"
	KeyAudioBlocked     = "ui.audio_blocked"
	KeyLevelComplete    = "msg.level_complete"
	KeyWrongAnswer      = "msg.wrong_answer"
	KeyTimeUp           = "msg.time_up"
)

var catalog = map[language.Tag]map[string]string{
	language.English: {
		KeyTitle:            "Save the Birds",
		KeyNamePrompt:       "Your name",
		KeyStart:            "Start",
		KeyScore:            "Score: %d",
		KeyLevel:            "Level: %d",
		KeyTime:             "Time: %d",
		KeyAnswer:           "Answer",
		KeyGameOver:         "Game over",
		KeyFinalScore:       "Final score: %d",
		KeyReachedLevel:     "You reached level %d",
		KeyPlayAgain:        "Play again",
		KeyLeaderboard:      "Leaderboard",
		KeyLeaderboardEmpty: "No scores yet.",
		KeyAudioBlocked:     "Sound playback was blocked by the browser.",
		KeyLevelComplete:    "Level %d complete!",
		KeyWrongAnswer:      "Wrong! Game over.",
		KeyTimeUp:           "Time's up! Game over.",
	},
	language.Russian: {
		KeyTitle:            "Спаси птиц",
		KeyNamePrompt:       "Ваше имя",
		KeyStart:            "Начать",
		KeyScore:            "Счет: %d",
		KeyLevel:            "Уровень: %d",
		KeyTime:             "Время: %d",
		KeyAnswer:           "Ответ",
		KeyGameOver:         "Игра окончена",
		KeyFinalScore:       "Ваш итоговый счет: %d",
		KeyReachedLevel:     "Вы достигли уровня: %d",
		KeyPlayAgain:        "Начать заново",
		KeyLeaderboard:      "Таблица лидеров",
		KeyLeaderboardEmpty: "Пока нет результатов.",
		KeyAudioBlocked:     "Воспроизведение звуков заблокировано браузером.",
		KeyLevelComplete:    "Уровень %d пройден!",
		KeyWrongAnswer:      "Ошибка! Игра окончена.",
		KeyTimeUp:           "Время вышло! Игра окончена.",
	},
}

func init() {
	for tag, messages := range catalog {
		for key, text := range messages {
			if err := message.SetString(tag, key, text); err != nil {
				panic("i18n: register " + key + ": " + err.Error())
			}
		}
	}
}

// Keys lists every registered message key.
func Keys() []string {
	keys := make([]string, 0, len(catalog[language.English]))
	for key := range catalog[language.English] {
		keys = append(keys, key)
	}
	return keys
}

// T formats key in the language of tag.
func T(tag language.Tag, key string, args ...any) string {
	return Printer(tag).Sprintf(key, args...)
}
