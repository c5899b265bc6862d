package bot

import (
	"fmt"
	"time"
)

// systemPromptKey is the settings-store key an operator can set to replace
// the built-in persona.
const systemPromptKey = "system_prompt"

const defaultSystemPrompt = `Kamu adalah Rara, admin bengkel Karsa Motoworks yang melayani repaint, detailing, coating, dan servis motor.
Jawab dengan bahasa Indonesia santai tapi sopan, singkat, dan langsung ke inti.
Gunakan tool yang tersedia untuk harga, katalog layanan, cek jadwal, dan booking. Jangan menebak harga atau ketersediaan tanpa tool.
Tanyakan tipe motor dan ukuran (S/M/L/XL) sebelum menyebut harga layanan yang tergantung ukuran.
Tanggal booking tulis dalam format YYYY-MM-DD dan jam dalam format HH:mm saat memanggil tool.
Jika slot penuh, tawarkan tanggal terdekat yang tersedia.
Jangan pernah mengarang nomor atau nama pelanggan.`

// composePrompt layers the date line and the sender profile under the base
// persona.
func composePrompt(base string, now time.Time, prefs SenderPrefs) string {
	prompt := base
	prompt += fmt.Sprintf("\n\nHari ini: %s (%s).", now.Format("2006-01-02"), indonesianWeekday(now.Weekday()))
	if line := prefs.PromptLine(); line != "" {
		prompt += "\n" + line
	}
	return prompt
}

func indonesianWeekday(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "Senin"
	case time.Tuesday:
		return "Selasa"
	case time.Wednesday:
		return "Rabu"
	case time.Thursday:
		return "Kamis"
	case time.Friday:
		return "Jumat"
	case time.Saturday:
		return "Sabtu"
	default:
		return "Minggu"
	}
}
