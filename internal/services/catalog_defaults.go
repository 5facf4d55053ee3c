package services

import (
	"strings"

	"github.com/yukikurage/family-chores-api/internal/constants"
	"github.com/yukikurage/family-chores-api/internal/models"
)

type defaultItem struct {
	title  string
	emoji  string
	points int
}

type defaultCatalog struct {
	tasks []defaultItem
	gifts []defaultItem
}

var defaultCatalogs = map[string]defaultCatalog{
	"en": {
		tasks: []defaultItem{
			{"Make the bed", "🛏️", 5},
			{"Brush teeth", "🪥", 5},
			{"Set the table", "🍽️", 10},
			{"Tidy your room", "🧸", 15},
			{"Feed the pet", "🐶", 10},
			{"Do homework", "📚", 20},
		},
		gifts: []defaultItem{
			{"30 minutes of screen time", "📱", 30},
			{"Choose dinner", "🍕", 50},
			{"Ice cream", "🍦", 40},
			{"Movie night", "🎬", 80},
		},
	},
	"es": {
		tasks: []defaultItem{
			{"Hacer la cama", "🛏️", 5},
			{"Lavarse los dientes", "🪥", 5},
			{"Poner la mesa", "🍽️", 10},
			{"Ordenar el cuarto", "🧸", 15},
			{"Dar de comer a la mascota", "🐶", 10},
			{"Hacer los deberes", "📚", 20},
		},
		gifts: []defaultItem{
			{"30 minutos de pantalla", "📱", 30},
			{"Elegir la cena", "🍕", 50},
			{"Helado", "🍦", 40},
			{"Noche de cine", "🎬", 80},
		},
	},
	"fr": {
		tasks: []defaultItem{
			{"Faire son lit", "🛏️", 5},
			{"Se brosser les dents", "🪥", 5},
			{"Mettre la table", "🍽️", 10},
			{"Ranger sa chambre", "🧸", 15},
			{"Nourrir l'animal", "🐶", 10},
			{"Faire ses devoirs", "📚", 20},
		},
		gifts: []defaultItem{
			{"30 minutes d'écran", "📱", 30},
			{"Choisir le dîner", "🍕", 50},
			{"Une glace", "🍦", 40},
			{"Soirée cinéma", "🎬", 80},
		},
	},
}

// DefaultCatalog returns fresh copies of the starter tasks and gifts for a
// locale such as "fr" or "es-MX". Unknown locales get the English set.
func DefaultCatalog(locale string) ([]models.Task, []models.Gift) {
	lang := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}

	catalog, ok := defaultCatalogs[lang]
	if !ok {
		catalog = defaultCatalogs[constants.DefaultLocale]
	}

	tasks := make([]models.Task, len(catalog.tasks))
	for i, item := range catalog.tasks {
		tasks[i] = models.Task{CatalogItem: item.catalogItem(i)}
	}
	gifts := make([]models.Gift, len(catalog.gifts))
	for i, item := range catalog.gifts {
		gifts[i] = models.Gift{CatalogItem: item.catalogItem(i)}
	}
	return tasks, gifts
}

func (d defaultItem) catalogItem(position int) models.CatalogItem {
	return models.CatalogItem{
		Title:     d.title,
		Emoji:     d.emoji,
		Points:    d.points,
		IsActive:  true,
		SortOrder: position,
	}
}
