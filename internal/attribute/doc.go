// Package attribute partitions node attributes into cosmetic and functional ones.
//
// Cosmetic attributes (text size, colors, backgrounds, fonts, drawing order)
// change with theming and rendering and never produce change records or
// influence identity resolution. Every attribute that is not cosmetic is
// functional.
package attribute
