// Package config loads the storefront admin settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults
//  2. the YAML file $STOREFRONT_CONFIG_PATH/storefront.yml
//     (/etc/storefront/config/storefront.yml by default)
//  3. STOREFRONT_<NAME> environment variables, e.g. STOREFRONT_PAGE_SIZE
//
// Every attribute remembers which layer set it, which is what
// `storefrontctl configuration show` prints.
package config
