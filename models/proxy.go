package models

// Proxy описывает SOCKS5-прокси для MTProto-клиента проверки каналов.
type Proxy struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Login    string `json:"login"`
	Password string `json:"password"`
}
