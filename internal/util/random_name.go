package util

import (
	"fmt"
	"math/rand"
	"time"
)

var random = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec

var adjectives = []string{
	"Lucky", "Cold", "Hot", "Quiet", "Loose", "Tight", "Wild", "Silent", "Grand", "Golden", "Royal",
	"Red", "Blue", "Green", "Velvet", "Smoky", "Midnight", "Dealer's", "High", "Low", "Ultimate", "Prime",
	"Bluffing", "Folding", "Raising", "Calling", "Shoving", "Flopping", "Rivered", "Stacked", "Sly", "Bold",
}

var animals = []string{
	"Shark", "Fish", "Whale", "Donkey", "Crocodile", "Tiger", "Lion", "Bear", "Otter", "Fox", "Wolf",
	"Rhino", "Panda", "Eagle", "Hawk", "Owl", "Cobra", "Mongoose", "Badger", "Bison", "Gecko", "Mule",
	"Hippo", "Giraffe", "Moose", "Lynx", "Falcon", "Raven", "Stallion", "Marlin",
}

// GetRandomName returns a random name by combining an adjective with an animal
// Table threads are named with it.
func GetRandomName() string {
	adjectivesIndex := random.Intn(len(adjectives))
	animalsIndex := random.Intn(len(animals))

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], animals[animalsIndex])
}
