package domain

// ProductCatalog is the closed set of product names an order may reference.
var ProductCatalog = []string{
	"Laptop HP Pavilion",
	"Laptop Dell XPS",
	"Laptop Lenovo ThinkPad",
	"Laptop ASUS ROG",
	`Monitor Samsung 27"`,
	"Monitor LG UltraWide",
	"Teclado Mecánico Logitech",
	"Mouse Gamer Razer",
	"Tarjeta Gráfica NVIDIA RTX 4090",
	"Tarjeta Gráfica AMD Radeon RX 7900",
	"Procesador Intel Core i9",
	"Procesador AMD Ryzen 9",
	"RAM Corsair 32GB DDR5",
	"SSD Samsung 1TB NVMe",
	"Motherboard ASUS ROG",
	"Fuente de Poder 850W",
	"Case Gamer RGB",
	"Webcam Logitech HD",
	"Auriculares HyperX Cloud",
	"Impresora HP LaserJet",
}

var catalogIndex = func() map[string]struct{} {
	idx := make(map[string]struct{}, len(ProductCatalog))
	for _, name := range ProductCatalog {
		idx[name] = struct{}{}
	}
	return idx
}()

func InCatalog(name string) bool {
	_, ok := catalogIndex[name]
	return ok
}
