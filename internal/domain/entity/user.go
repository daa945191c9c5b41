package entity

// User identidad de la tienda autenticada. Se crea a partir de la respuesta de
// login/signup o se restaura desde el almacenamiento local; se destruye en logout.
type User struct {
	ID        int64  `json:"id"`
	Phone     string `json:"phone"`
	StoreName string `json:"store_name"`
}
