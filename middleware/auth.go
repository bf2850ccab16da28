package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"backend_resto/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware valida el token JWT y extrae la identidad del vendedor
// y su restaurante. El id del restaurante viene siempre del token, nunca
// de un dato sin autenticar.
type AuthMiddleware struct {
	secret string
	issuer string
}

// NewAuthMiddleware crea una nueva instancia de AuthMiddleware
func NewAuthMiddleware(cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		secret: cfg.JWT.Secret,
		issuer: cfg.JWT.Issuer,
	}
}

// Claims son los claims del token de sesión
type Claims struct {
	IDVendedor    uint   `json:"id_vendedor"`
	IDRestaurante uint   `json:"id_restaurante"`
	Rol           string `json:"rol"`
	jwt.RegisteredClaims
}

// RequireAuth exige un token válido y deja la identidad en el contexto
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.GetHeader("authorization")
		}

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "UNAUTHORIZED",
				"message": "Se requiere el encabezado Authorization",
			})
			c.Abort()
			return
		}

		token := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else if strings.HasPrefix(authHeader, "Token ") {
			token = strings.TrimPrefix(authHeader, "Token ")
		}

		claims, err := am.parseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "UNAUTHORIZED",
				"message": "Token inválido o expirado",
			})
			c.Abort()
			return
		}

		c.Set("id_vendedor", claims.IDVendedor)
		c.Set("id_restaurante", claims.IDRestaurante)
		c.Set("rol", claims.Rol)

		c.Next()
	}
}

// parseToken valida la firma y vigencia del token
func (am *AuthMiddleware) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(am.secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token inválido")
	}
	if claims.IDRestaurante == 0 {
		return nil, fmt.Errorf("token sin restaurante asociado")
	}

	return claims, nil
}

// GenerateToken emite un token de sesión para un vendedor
func (am *AuthMiddleware) GenerateToken(idVendedor, idRestaurante uint, rol string, expiresIn time.Duration) (string, error) {
	claims := Claims{
		IDVendedor:    idVendedor,
		IDRestaurante: idRestaurante,
		Rol:           rol,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    am.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(am.secret))
}

// GetRestauranteID devuelve el id del restaurante autenticado, 0 si no hay
func GetRestauranteID(c *gin.Context) uint {
	if id, exists := c.Get("id_restaurante"); exists {
		if idUint, ok := id.(uint); ok {
			return idUint
		}
	}
	return 0
}

// GetVendedorID devuelve el id del vendedor autenticado, 0 si no hay
func GetVendedorID(c *gin.Context) uint {
	if id, exists := c.Get("id_vendedor"); exists {
		if idUint, ok := id.(uint); ok {
			return idUint
		}
	}
	return 0
}
