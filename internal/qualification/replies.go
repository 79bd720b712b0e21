package qualification

import (
	"github.com/fortis-steel/chatbot-api/internal/contact"
	"github.com/fortis-steel/chatbot-api/internal/notify"
	"github.com/fortis-steel/chatbot-api/internal/templates"
)

const (
	replyAskBoth = `Отличный объём: заказ на {{.Amount}} руб. мы передадим персональному менеджеру. ` +
		`Оставьте, пожалуйста, номер телефона и email, чтобы мы подготовили коммерческое предложение.`

	replyAskMissing = `Спасибо! Укажите, пожалуйста, ещё {{.Missing}}, и мы сразу передадим заявку на {{.Amount}} руб. менеджеру.`

	replyReminder = `Спасибо за интерес к {{.Brand}}! Для оформления заявки нам не хватает только {{.Missing}}. ` +
		`Напишите его, и менеджер свяжется с вами в течение рабочего дня.`

	replyRepeat = `Чтобы менеджер мог связаться с вами, пожалуйста, напишите {{.Missing}}.`

	replyFullSent = `Спасибо! Ваша заявка на {{.Amount}} руб. передана менеджеру. Мы свяжемся с вами в ближайшее время.`

	replyFullFailed = `Извините, заявку не удалось отправить из-за технической ошибки. ` +
		`Пожалуйста, отправьте сообщение ещё раз через минуту.`

	replyAckFull = `Ваша заявка уже передана менеджеру. Он свяжется с вами по указанным контактам.`

	replyAckIncomplete = `Ваша заявка уже передана менеджеру. Он свяжется с вами в ближайшее время по оставленному контакту.`
)

type replyView struct {
	Brand   string
	Amount  string
	Missing string
}

type replies struct {
	brand    string
	renderer *templates.Renderer
}

func newReplies(brand string) *replies {
	if brand == "" {
		brand = "Fortis"
	}
	return &replies{brand: brand, renderer: &templates.Renderer{}}
}

func (r *replies) render(name, tmpl string, amount int64, missing string) string {
	return r.renderer.MustRender(name, tmpl, replyView{
		Brand:   r.brand,
		Amount:  notify.FormatAmount(amount),
		Missing: missing,
	})
}

// missingContact names the absent channel in accusative form.
func missingContact(c contact.Contacts) string {
	if !c.Phone.IsSet() {
		return "номер телефона"
	}
	return "email"
}
