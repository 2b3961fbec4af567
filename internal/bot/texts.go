package bot

const (
	textStart = "<b>Приветствуем вас в нашем сервисе поиска Телеграмм каналов ютуберов!</b>\n" +
		"Ответы на вопросы: /faq\n\nВыберите опцию:"

	textFindChannels = "<b>Нажмите кнопку ниже для авторизации на Youtube и получения списка ваших подписок:</b>\n\n" +
		"<i>Процесс займет время: ~50 секунд. (в зависимости от количества ваших подписок)</i>"

	textFAQ = "*Ответы на вопросы о проекте:*\n\n" +
		"Какова цель проекта?\n— Максимально упростить поиск Телеграмм каналов ваших любимых авторов.\n\n" +
		"У меня не украдут Google Аккаунт?\n— Нет. Бот запрашивает только чтение списка подписок YouTube и не хранит ваш токен.\n\n" +
		"Как работает бот?\n— Бот просит вас авторизоваться в Google, чтобы получить список ваших подписок на YouTube. " +
		"Затем он ищет соответствия YouTube-каналов и Телеграмм-каналов в своей базе. " +
		"Для каналов, которых в базе нет, бот запрашивает ссылки из описания канала и ищет среди них ссылку на Телеграмм. " +
		"Найденные ссылки добавляются в базу. В итоге вы получаете список YouTube-каналов с их Телеграмм-каналами.\n\n" +
		"Знаете канал, которого нет в базе? Предложите его через /link_channel."

	textAskYouTubeURL  = "Пожалуйста, отправьте URL-адрес YouTube-канала, к которому хотите привязать Telegram-канал."
	textAskTelegramURL = "Введите URL Telegram-канала, к которому будет привязан YouTube-канал."
	textRequestFailed  = "Произошла ошибка при обработке запроса. Пожалуйста, попробуйте снова."
	textModeratorOnly  = "Действие доступно только модератору."

	buttonFindChannels = "Найти YouTube-каналы в Telegram"
	buttonLinkChannel  = "Связать YouTube-канал с Telegram-каналом"
	buttonAuthorize    = "Авторизоваться и найти подписки"
	buttonApprove      = "Одобрить"
	buttonReject       = "Удалить"

	formatDiscovered = "Найден новый канал:\nYouTube: %s\nTelegram: %s"
	formatSubmission = "Новый запрос на привязку канала:\nYouTube: %s\nTelegram: %s\nНазвание: %s"
)
