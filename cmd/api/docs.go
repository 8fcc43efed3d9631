package main

// @title Deshimart Commerce API
// @version 1.0
// @description Storefront and back-office API: catalog, accounts, orders, payments and admin reporting.

// @contact.name Deshimart Engineering

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
